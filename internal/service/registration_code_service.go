package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

const (
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeRandomLength = 6
	codeAttempts     = 3
)

type registrationCodeRepository interface {
	List(ctx context.Context) ([]models.RegistrationCode, error)
	Create(ctx context.Context, code *models.RegistrationCode) error
	Deactivate(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// RegistrationCodeService issues and retires staff registration codes.
type RegistrationCodeService struct {
	codes  registrationCodeRepository
	audit  AuditRecorder
	logger *zap.Logger
	now    func() time.Time
}

// NewRegistrationCodeService constructs a RegistrationCodeService.
func NewRegistrationCodeService(codes registrationCodeRepository, audit AuditRecorder, logger *zap.Logger) *RegistrationCodeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationCodeService{codes: codes, audit: auditOrNop(audit), logger: logger, now: time.Now}
}

// List returns every code, newest first.
func (s *RegistrationCodeService) List(ctx context.Context) ([]models.RegistrationCode, error) {
	codes, err := s.codes.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list registration codes")
	}
	if codes == nil {
		codes = []models.RegistrationCode{}
	}
	return codes, nil
}

// Create issues a fresh active code for a staff role.
func (s *RegistrationCodeService) Create(ctx context.Context, actor Actor, input models.RegistrationCodeInput) (*models.RegistrationCode, error) {
	if !input.Role.IsStaff() {
		return nil, appErrors.Validation("Valid role is required")
	}
	if input.FacultyID != nil && *input.FacultyID <= 0 {
		input.FacultyID = nil
	}

	var lastErr error
	for attempt := 0; attempt < codeAttempts; attempt++ {
		value, err := GenerateRegistrationCode(input.Role, s.now())
		if err != nil {
			return nil, internalError(err, "failed to generate registration code")
		}
		code := &models.RegistrationCode{
			Code:      value,
			Role:      input.Role,
			FacultyID: input.FacultyID,
			Active:    true,
			ExpiresAt: input.ExpiresAt,
		}
		err = s.codes.Create(ctx, code)
		if err == nil {
			code.CreatedAt = s.now()
			s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityRegistrationCode, &code.ID, nil, code))
			return code, nil
		}
		if database.IsForeignKeyViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Faculty does not exist")
		}
		if !database.IsUniqueViolation(err) {
			return nil, internalError(err, "failed to create registration code")
		}
		lastErr = err
	}
	return nil, conflict(lastErr, "Could not generate a unique registration code")
}

// Deactivate disables a code without deleting it.
func (s *RegistrationCodeService) Deactivate(ctx context.Context, actor Actor, id int64) error {
	if err := s.codes.Deactivate(ctx, id); err != nil {
		return storeError(err, "Registration code not found", "", "", "failed to deactivate registration code")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDeactivate, models.EntityRegistrationCode, &id, nil, map[string]bool{"isActive": false}))
	return nil
}

// Delete removes a code.
func (s *RegistrationCodeService) Delete(ctx context.Context, actor Actor, id int64) error {
	if err := s.codes.Delete(ctx, id); err != nil {
		return storeError(err, "Registration code not found", "", "", "failed to delete registration code")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityRegistrationCode, &id, nil, nil))
	return nil
}

// GenerateRegistrationCode builds "<ROL>-<base36 unix millis>-<6 random>", upper case.
func GenerateRegistrationCode(role models.UserRole, now time.Time) (string, error) {
	prefix := strings.ToUpper(string(role))
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	suffix := make([]byte, codeRandomLength)
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		suffix[i] = codeAlphabet[n.Int64()]
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return fmt.Sprintf("%s-%s-%s", prefix, stamp, suffix), nil
}
