package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const userSelect = `SELECT u.id, u.user_id, u.first_name, u.last_name, u.email, u.password_hash, u.role,
u.faculty_id, f.faculty_name, f.faculty_code, u.is_approved, u.created_at, u.updated_at
FROM users u LEFT JOIN faculties f ON f.id = u.faculty_id`

// UserRepository provides database access for user management.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail returns a user by email address, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "find user by email", userSelect+` WHERE LOWER(u.email) = LOWER($1) LIMIT 1`, email)
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, "find user by id", userSelect+` WHERE u.id = $1 LIMIT 1`, id)
}

// FindByUserIDOrEmail matches the institutional id first, then the email.
func (r *UserRepository) FindByUserIDOrEmail(ctx context.Context, userID, email string) (*models.User, error) {
	const where = ` WHERE u.user_id = $1 OR LOWER(u.email) = LOWER($2) ORDER BY (u.user_id = $1) DESC LIMIT 1`
	return r.findOne(ctx, "find user by user id or email", userSelect+where, userID, email)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, args ...interface{}) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// List returns users matching the filter, newest first.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var b whereBuilder
	if filter.Role != nil {
		b.eq("u.role", *filter.Role)
	}
	if len(filter.Roles) > 0 {
		roles := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			roles = append(roles, string(role))
		}
		b.cond("u.role = ANY(%s)", pq.Array(roles))
	}
	if filter.FacultyID != nil {
		b.eq("u.faculty_id", *filter.FacultyID)
	}
	if filter.Approved != nil {
		b.eq("u.is_approved", *filter.Approved)
	}

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, userSelect+b.String()+" ORDER BY u.created_at DESC, u.id DESC", b.Args()...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a new user and fills in its generated fields.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO users (user_id, first_name, last_name, email, password_hash, role, faculty_id, is_approved)
VALUES (:user_id, :first_name, :last_name, :email, :password_hash, :role, :faculty_id, :is_approved)
RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	user.ID = id
	return nil
}

// UpdateProfile rewrites identity, role, faculty, approval and password hash.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	const query = `UPDATE users SET user_id = :user_id, first_name = :first_name, last_name = :last_name, email = :email,
password_hash = :password_hash, role = :role, faculty_id = :faculty_id, is_approved = :is_approved, updated_at = NOW()
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}

// SetApproved approves a user.
func (r *UserRepository) SetApproved(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_approved = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve user: %w", err)
	}
	return expectAffected(res, "approve user")
}

// UpdateRole changes a user's role.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.UserRole) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	return expectAffected(res, "update user role")
}

// UpdateFaculty moves a user to another faculty, or none.
func (r *UserRepository) UpdateFaculty(ctx context.Context, id int64, facultyID *int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET faculty_id = $2, updated_at = NOW() WHERE id = $1`, id, facultyID)
	if err != nil {
		return fmt.Errorf("update user faculty: %w", err)
	}
	return expectAffected(res, "update user faculty")
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, "delete user")
}

// ListLecturers returns approved staff with the number of classes they teach.
func (r *UserRepository) ListLecturers(ctx context.Context) ([]models.LecturerSummary, error) {
	const query = `SELECT u.id, u.user_id, u.first_name, u.last_name, u.email, u.role, u.faculty_id, f.faculty_name,
COALESCE(cc.total, 0) AS class_count
FROM users u
LEFT JOIN faculties f ON f.id = u.faculty_id
LEFT JOIN (SELECT lecturer_id, COUNT(*) AS total FROM classes GROUP BY lecturer_id) cc ON cc.lecturer_id = u.id
WHERE u.role = ANY($1) AND u.is_approved = TRUE
ORDER BY u.first_name, u.last_name`
	var lecturers []models.LecturerSummary
	if err := r.db.SelectContext(ctx, &lecturers, query, pq.Array(staffRoleNames())); err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}
	return lecturers, nil
}

func staffRoleNames() []string {
	names := make([]string, 0, len(models.StaffRoles))
	for _, role := range models.StaffRoles {
		names = append(names, string(role))
	}
	return names
}
