package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const ratingSelect = `SELECT ra.id, ra.rating, ra.comments, ra.created_at, ra.report_id,
TO_CHAR(r.date_of_lecture, 'YYYY-MM-DD') AS date_of_lecture, co.course_name,
us.first_name AS student_first_name, us.last_name AS student_last_name
FROM ratings ra
JOIN reports r ON r.id = ra.report_id
LEFT JOIN courses co ON co.id = r.course_id
LEFT JOIN users us ON us.id = ra.student_id`

// RatingRepository persists student lecture ratings.
type RatingRepository struct {
	db *sqlx.DB
}

// NewRatingRepository constructs the repository.
func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// List returns ratings newest first. Students only see their own.
func (r *RatingRepository) List(ctx context.Context, filter models.RatingFilter) ([]models.RatingRecord, error) {
	var b whereBuilder
	b.scope(filter.Scope, scopeColumns{owner: "ra.student_id", faculty: "r.faculty_id"})
	var rows []models.RatingRecord
	if err := r.db.SelectContext(ctx, &rows, ratingSelect+b.String()+" ORDER BY ra.created_at DESC, ra.id DESC", b.Args()...); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return rows, nil
}

// Create inserts a rating. A second rating by the same student surfaces as a
// unique violation.
func (r *RatingRepository) Create(ctx context.Context, rating models.NewRating) (int64, error) {
	const query = `INSERT INTO ratings (report_id, student_id, rating, comments)
VALUES (:report_id, :student_id, :rating, :comments) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, rating)
	if err != nil {
		return 0, fmt.Errorf("create rating: %w", err)
	}
	return id, nil
}
