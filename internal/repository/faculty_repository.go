package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// FacultyRepository persists faculties.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

// List returns every faculty ordered by name.
func (r *FacultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	const query = `SELECT id, faculty_code, faculty_name, description, created_at FROM faculties ORDER BY faculty_name`
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// Options returns the public faculty picker list.
func (r *FacultyRepository) Options(ctx context.Context) ([]models.FacultyOption, error) {
	const query = `SELECT id, faculty_code, faculty_name FROM faculties ORDER BY faculty_name`
	var options []models.FacultyOption
	if err := r.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("list faculty options: %w", err)
	}
	return options, nil
}

// FindByID returns one faculty.
func (r *FacultyRepository) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	const query = `SELECT id, faculty_code, faculty_name, description, created_at FROM faculties WHERE id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find faculty: %w", err)
	}
	return &faculty, nil
}

// IDByCode resolves a faculty code.
func (r *FacultyRepository) IDByCode(ctx context.Context, code string) (int64, error) {
	var id int64
	if err := r.db.GetContext(ctx, &id, `SELECT id FROM faculties WHERE faculty_code = $1`, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("find faculty by code: %w", err)
	}
	return id, nil
}

// Create inserts a faculty and returns its id.
func (r *FacultyRepository) Create(ctx context.Context, input models.FacultyInput) (int64, error) {
	const query = `INSERT INTO faculties (faculty_code, faculty_name, description) VALUES ($1, $2, $3) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, input.Code, input.Name, input.Description).Scan(&id); err != nil {
		return 0, fmt.Errorf("create faculty: %w", err)
	}
	return id, nil
}

// Upsert creates the faculty or renames the existing one with that code.
func (r *FacultyRepository) Upsert(ctx context.Context, input models.FacultyInput) (int64, error) {
	const query = `INSERT INTO faculties (faculty_code, faculty_name, description) VALUES ($1, $2, $3)
ON CONFLICT (faculty_code) DO UPDATE SET faculty_name = EXCLUDED.faculty_name, updated_at = NOW()
RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, input.Code, input.Name, input.Description).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert faculty: %w", err)
	}
	return id, nil
}

// Update replaces a faculty's fields.
func (r *FacultyRepository) Update(ctx context.Context, id int64, input models.FacultyInput) error {
	const query = `UPDATE faculties SET faculty_code = $2, faculty_name = $3, description = $4, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, input.Code, input.Name, input.Description)
	if err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	return expectAffected(res, "update faculty")
}

// Delete removes a faculty. References surface as foreign key violations.
func (r *FacultyRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM faculties WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	return expectAffected(res, "delete faculty")
}
