package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// whereBuilder accumulates AND-ed predicates and numbers their $n placeholders.
// Values always travel as arguments, never inside the SQL text.
type whereBuilder struct {
	conds []string
	args  []interface{}
}

// arg binds v and returns its placeholder. Join clauses use it directly.
func (b *whereBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) eq(column string, v interface{}) {
	b.conds = append(b.conds, column+" = "+b.arg(v))
}

// cond adds a predicate whose single %s is replaced by v's placeholder.
func (b *whereBuilder) cond(format string, v interface{}) {
	b.conds = append(b.conds, fmt.Sprintf(format, b.arg(v)))
}

func (b *whereBuilder) raw(predicate string) {
	b.conds = append(b.conds, predicate)
}

func (b *whereBuilder) String() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func (b *whereBuilder) Args() []interface{} {
	return b.args
}

// scopeColumns tells scope() which columns carry ownership for a table.
type scopeColumns struct {
	owner   string
	faculty string
	// class enables the enrolled scope through an active enrolment on this column.
	class string
}

// scope translates a resolved role scope into predicates.
func (b *whereBuilder) scope(s models.Scope, cols scopeColumns) {
	switch s.Kind {
	case models.ScopeAll:
	case models.ScopeOwn:
		if cols.owner == "" {
			b.raw("FALSE")
			return
		}
		b.eq(cols.owner, s.UserID)
	case models.ScopeFaculty:
		if s.FacultyID == nil || cols.faculty == "" {
			b.raw("FALSE")
			return
		}
		b.eq(cols.faculty, *s.FacultyID)
	case models.ScopeEnrolled:
		switch {
		case cols.class != "":
			b.cond("EXISTS (SELECT 1 FROM student_enrollments se WHERE se.class_id = "+cols.class+
				" AND se.student_id = %s AND se.enrollment_status = 'active')", s.UserID)
		case cols.owner != "":
			b.eq(cols.owner, s.UserID)
		default:
			b.raw("FALSE")
		}
	default:
		b.raw("FALSE")
	}
}

func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

// activeEnrolmentCounts is joined as "en" to count active students per class.
const activeEnrolmentCounts = `(SELECT class_id, COUNT(*) AS total FROM student_enrollments WHERE enrollment_status = 'active' GROUP BY class_id)`

// insertReturningID runs a named INSERT ... RETURNING id.
func insertReturningID(ctx context.Context, db *sqlx.DB, query string, arg interface{}) (int64, error) {
	named, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := db.QueryRowxContext(ctx, db.Rebind(named), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
