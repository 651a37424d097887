package service

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/luct-reporting-api/pkg/database"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

func internalError(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func conflict(err error, message string) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, message)
}

// storeError maps a repository write error: missing rows become 404, unique
// violations 409 with duplicate, foreign key violations 409 with referenced.
func storeError(err error, notFound, duplicate, referenced, failed string) *appErrors.Error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.NotFound(notFound)
	case duplicate != "" && database.IsUniqueViolation(err):
		return conflict(err, duplicate)
	case referenced != "" && database.IsForeignKeyViolation(err):
		return conflict(err, referenced)
	default:
		return internalError(err, failed)
	}
}
