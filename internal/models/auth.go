package models

import "github.com/golang-jwt/jwt/v5"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the self-service signup payload.
type RegisterRequest struct {
	FirstName        string   `json:"firstName" validate:"required"`
	LastName         string   `json:"lastName" validate:"required"`
	Email            string   `json:"email" validate:"required"`
	Password         string   `json:"password" validate:"required"`
	Role             UserRole `json:"role" validate:"required"`
	FacultyID        *int64   `json:"facultyId"`
	RegistrationCode string   `json:"registrationCode"`
}

// AuthResponse returns the issued token and user info.
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	ID        int64    `json:"id"`
	Role      UserRole `json:"role"`
	Name      string   `json:"name"`
	FacultyID *int64   `json:"facultyId"`
	jwt.RegisteredClaims
}
