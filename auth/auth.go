// Package auth handles user accounts and JWT bearer authentication: signup,
// login, password hashing, token issuance/verification, and the echo
// middleware that guards task routes.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrEmailInUse         = errors.New("auth: email already in use")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidInput       = errors.New("auth: invalid input")
)

// User models the persisted account record.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepository abstracts account persistence so callers can map to any
// table schema.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}

// PasswordHasher manages password hashing and verification.
type PasswordHasher interface {
	Hash(ctx context.Context, plain []byte) ([]byte, error)
	Compare(ctx context.Context, plain, hash []byte) error
}
