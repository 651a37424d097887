package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const registrationCodeSelect = `SELECT rc.id, rc.code, rc.role, rc.faculty_id, f.faculty_name, rc.is_active, rc.expires_at, rc.created_at
FROM registration_codes rc LEFT JOIN faculties f ON f.id = rc.faculty_id`

// RegistrationCodeRepository persists staff registration codes.
type RegistrationCodeRepository struct {
	db *sqlx.DB
}

// NewRegistrationCodeRepository constructs the repository.
func NewRegistrationCodeRepository(db *sqlx.DB) *RegistrationCodeRepository {
	return &RegistrationCodeRepository{db: db}
}

// List returns codes newest first.
func (r *RegistrationCodeRepository) List(ctx context.Context) ([]models.RegistrationCode, error) {
	var codes []models.RegistrationCode
	if err := r.db.SelectContext(ctx, &codes, registrationCodeSelect+" ORDER BY rc.created_at DESC, rc.id DESC"); err != nil {
		return nil, fmt.Errorf("list registration codes: %w", err)
	}
	return codes, nil
}

// FindByCode returns the code issued for role, in any state.
func (r *RegistrationCodeRepository) FindByCode(ctx context.Context, code string, role models.UserRole) (*models.RegistrationCode, error) {
	var rc models.RegistrationCode
	if err := r.db.GetContext(ctx, &rc, registrationCodeSelect+" WHERE rc.code = $1 AND rc.role = $2", code, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find registration code: %w", err)
	}
	return &rc, nil
}

// Create stores a new code and fills in its id.
func (r *RegistrationCodeRepository) Create(ctx context.Context, code *models.RegistrationCode) error {
	const query = `INSERT INTO registration_codes (code, role, faculty_id, is_active, expires_at)
VALUES (:code, :role, :faculty_id, :is_active, :expires_at) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, code)
	if err != nil {
		return fmt.Errorf("create registration code: %w", err)
	}
	code.ID = id
	return nil
}

// Ensure stores the code unless it already exists.
func (r *RegistrationCodeRepository) Ensure(ctx context.Context, code models.RegistrationCode) error {
	const query = `INSERT INTO registration_codes (code, role, faculty_id, is_active, expires_at)
VALUES (:code, :role, :faculty_id, :is_active, :expires_at) ON CONFLICT (code) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("ensure registration code: %w", err)
	}
	return nil
}

// Deactivate disables a code.
func (r *RegistrationCodeRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE registration_codes SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate registration code: %w", err)
	}
	return expectAffected(res, "deactivate registration code")
}

// Delete removes a code.
func (r *RegistrationCodeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registration_codes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete registration code: %w", err)
	}
	return expectAffected(res, "delete registration code")
}
