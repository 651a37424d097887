package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

type seedFacultyStore interface {
	Upsert(ctx context.Context, input models.FacultyInput) (int64, error)
}

type seedCodeStore interface {
	Ensure(ctx context.Context, code models.RegistrationCode) error
}

type seedUserStore interface {
	FindByUserIDOrEmail(ctx context.Context, userID, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
}

// SeedPasswords are the demo account passwords per audience.
type SeedPasswords struct {
	Admin   string
	Staff   string
	Student string
}

// SeedSummary reports what a seeding run touched.
type SeedSummary struct {
	Faculties    int
	Codes        int
	UsersCreated int
	UsersUpdated int
}

type seedUser struct {
	userID    string
	firstName string
	lastName  string
	email     string
	role      models.UserRole
	faculty   string
}

var seedFaculties = []models.FacultyInput{
	{Code: "FABE", Name: "Architecture & Built Environment"},
	{Code: "FBMG", Name: "Business Management & Globalisation"},
	{Code: "FICT", Name: "Information & Communication Technology"},
}

var seedCodes = []struct {
	code    string
	role    models.UserRole
	faculty string
}{
	{"FICT-LECT-2025", models.RoleLecturer, "FICT"},
	{"FICT-PRL-2025", models.RolePrincipalLecturer, "FICT"},
	{"FICT-PL-2025", models.RoleProgramLeader, "FICT"},
	{"FICT-STU-2025", models.RoleStudent, "FICT"},
	{"FABE-PL-2025", models.RoleProgramLeader, "FABE"},
}

var seedUsers = []seedUser{
	{"ADM001", "System", "Administrator", "admin@luct.ac.ls", models.RoleAdmin, ""},
	{"PL001", "Naledi", "Molefe", "naledi.molefe@luct.ac.ls", models.RoleProgramLeader, "FICT"},
	{"PRL001", "Thabo", "Makoanyane", "thabo.makoanyane@luct.ac.ls", models.RolePrincipalLecturer, "FICT"},
	{"LEC001", "Boitumelo", "Tebello", "boitumelo.tebello@luct.ac.ls", models.RoleLecturer, "FICT"},
	{"STU001", "Lerato", "Sechele", "lerato.sechele@luct.ac.ls", models.RoleStudent, "FICT"},
}

// SeedService upserts the demo faculties, registration codes and accounts.
// Running it repeatedly converges on the same state.
type SeedService struct {
	faculties seedFacultyStore
	codes     seedCodeStore
	users     seedUserStore
	passwords SeedPasswords
	logger    *zap.Logger
}

// NewSeedService constructs a SeedService.
func NewSeedService(faculties seedFacultyStore, codes seedCodeStore, users seedUserStore, passwords SeedPasswords, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if passwords.Admin == "" {
		passwords.Admin = "admin123"
	}
	if passwords.Staff == "" {
		passwords.Staff = "secure123"
	}
	if passwords.Student == "" {
		passwords.Student = "learn123"
	}
	return &SeedService{faculties: faculties, codes: codes, users: users, passwords: passwords, logger: logger}
}

// Seed applies the demo data.
func (s *SeedService) Seed(ctx context.Context) (SeedSummary, error) {
	var summary SeedSummary
	facultyIDs := make(map[string]int64, len(seedFaculties))
	for _, faculty := range seedFaculties {
		id, err := s.faculties.Upsert(ctx, faculty)
		if err != nil {
			return summary, fmt.Errorf("seed faculty %s: %w", faculty.Code, err)
		}
		facultyIDs[faculty.Code] = id
		summary.Faculties++
	}

	for _, c := range seedCodes {
		code := models.RegistrationCode{Code: c.code, Role: c.role, Active: true}
		if id, ok := facultyIDs[c.faculty]; ok {
			code.FacultyID = int64Ptr(id)
		}
		if err := s.codes.Ensure(ctx, code); err != nil {
			return summary, fmt.Errorf("seed registration code %s: %w", c.code, err)
		}
		summary.Codes++
	}

	for _, u := range seedUsers {
		created, err := s.seedUser(ctx, u, facultyIDs)
		if err != nil {
			return summary, fmt.Errorf("seed user %s: %w", u.userID, err)
		}
		if created {
			summary.UsersCreated++
		} else {
			summary.UsersUpdated++
		}
	}

	s.logger.Info("demo data seeded",
		zap.Int("faculties", summary.Faculties),
		zap.Int("registration_codes", summary.Codes),
		zap.Int("users_created", summary.UsersCreated),
		zap.Int("users_updated", summary.UsersUpdated))
	return summary, nil
}

func (s *SeedService) seedUser(ctx context.Context, u seedUser, facultyIDs map[string]int64) (bool, error) {
	password := s.passwordFor(u.role)
	user := &models.User{
		UserID:    u.userID,
		FirstName: u.firstName,
		LastName:  u.lastName,
		Email:     strings.ToLower(u.email),
		Role:      u.role,
		Approved:  true,
	}
	if id, ok := facultyIDs[u.faculty]; ok {
		user.FacultyID = int64Ptr(id)
	}

	existing, err := s.users.FindByUserIDOrEmail(ctx, u.userID, user.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
		return true, s.users.Create(ctx, user)
	}

	user.ID = existing.ID
	user.PasswordHash = existing.PasswordHash
	if !strings.HasPrefix(existing.PasswordHash, "$2") ||
		bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(password)) != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	return false, s.users.UpdateProfile(ctx, user)
}

func (s *SeedService) passwordFor(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return s.passwords.Admin
	case models.RoleStudent:
		return s.passwords.Student
	default:
		return s.passwords.Staff
	}
}
