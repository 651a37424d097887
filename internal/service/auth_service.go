package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

const userIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type registrationCodeFinder interface {
	FindByCode(ctx context.Context, code string, role models.UserRole) (*models.RegistrationCode, error)
}

type facultyOptionLister interface {
	Options(ctx context.Context) ([]models.FacultyOption, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
	RequireApproval   bool
}

// AuthService provides authentication use cases.
type AuthService struct {
	users     authUserRepository
	codes     registrationCodeFinder
	faculties facultyOptionLister
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, codes registrationCodeFinder, faculties facultyOptionLister, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	return &AuthService{
		users:     users,
		codes:     codes,
		faculties: faculties,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, internalError(err, "failed to fetch user")
	}

	if user.PasswordHash == "" {
		return nil, appErrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	if s.config.RequireApproval && !user.Approved {
		return nil, appErrors.ErrPendingApproval
	}

	return s.respond(user)
}

// Register creates an account. Staff need a registration code for their role.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Missing required fields")
	}
	if !req.Role.Valid() {
		return nil, appErrors.Validation("Invalid role")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Email already exists")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to check email")
	}

	facultyID := req.FacultyID
	if req.Role != models.RoleStudent || req.RegistrationCode != "" {
		if req.RegistrationCode == "" {
			return nil, appErrors.Validation("Registration code is required")
		}
		code, err := s.codes.FindByCode(ctx, req.RegistrationCode, req.Role)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, internalError(err, "failed to check registration code")
		}
		if code == nil || !code.Usable(s.now()) {
			return nil, appErrors.Validation("Invalid or expired registration code")
		}
		if code.FacultyID != nil {
			facultyID = code.FacultyID
		}
	}
	if facultyID == nil || *facultyID <= 0 {
		return nil, appErrors.Validation("Faculty selection is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError(err, "failed to hash password")
	}
	userID, err := GenerateUserID(req.Role)
	if err != nil {
		return nil, internalError(err, "failed to generate user id")
	}

	user := &models.User{
		UserID:       userID,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		FacultyID:    facultyID,
		Approved:     !s.config.RequireApproval || req.Role == models.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, conflict(err, "Email already exists")
		case database.IsForeignKeyViolation(err):
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Faculty selection is required")
		}
		return nil, internalError(err, "failed to create user")
	}

	stored, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		s.logger.Warn("failed to reload registered user", zap.Int64("id", user.ID), zap.Error(err))
		stored = user
	}
	s.logger.Info("user registered", zap.Int64("id", stored.ID), zap.String("role", string(stored.Role)))
	return s.respond(stored)
}

// Faculties lists the public faculty picker.
func (s *AuthService) Faculties(ctx context.Context) ([]models.FacultyOption, error) {
	options, err := s.faculties.Options(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list faculties")
	}
	if options == nil {
		options = []models.FacultyOption{}
	}
	return options, nil
}

// Me returns the profile behind the token.
func (s *AuthService) Me(ctx context.Context, id int64) (*models.UserInfo, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("User not found")
		}
		return nil, internalError(err, "failed to load user")
	}
	info := user.Info()
	return &info, nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "Invalid or expired token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, internalError(err, "failed to create access token")
	}
	return &models.AuthResponse{Token: token, User: user.Info()}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := s.now().UTC()
	claims := &models.JWTClaims{
		ID:        user.ID,
		Role:      user.Role,
		Name:      user.FullName(),
		FacultyID: user.FacultyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.AccessTokenSecret))
}

// GenerateUserID returns "<role prefix>-<6 random uppercase alphanumerics>".
func GenerateUserID(role models.UserRole) (string, error) {
	suffix, err := randomString(6)
	if err != nil {
		return "", err
	}
	return role.UserIDPrefix() + "-" + suffix, nil
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(userIDAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = userIDAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
