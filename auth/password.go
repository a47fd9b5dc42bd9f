package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = errors.New("auth: password too short")
	ErrPasswordTooLong  = errors.New("auth: password too long")
)

const (
	DefaultBcryptCost = 12
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// BcryptHasher implements PasswordHasher using bcrypt.
type BcryptHasher struct {
	cost int
}

// BcryptHasherOption configures BcryptHasher.
type BcryptHasherOption func(*BcryptHasher)

// WithBcryptCost sets the bcrypt cost factor.
func WithBcryptCost(cost int) BcryptHasherOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// NewBcryptHasher creates a new bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptHasherOption) *BcryptHasher {
	h := &BcryptHasher{cost: DefaultBcryptCost}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Hash validates the password length and generates a bcrypt hash.
func (h *BcryptHasher) Hash(ctx context.Context, plain []byte) ([]byte, error) {
	if err := contextError(ctx); err != nil {
		return nil, err
	}
	if err := ValidatePassword(plain); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword(plain, h.cost)
	if err != nil {
		return nil, fmt.Errorf("auth: bcrypt hash failed: %w", err)
	}
	return hashed, nil
}

// Compare validates a password against a stored hash.
func (h *BcryptHasher) Compare(ctx context.Context, plain, hash []byte) error {
	if err := contextError(ctx); err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(hash, plain); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("auth: bcrypt compare failed: %w", err)
	}
	return nil
}

// ValidatePassword enforces the length bounds applied at signup.
func ValidatePassword(plain []byte) error {
	length := len([]rune(string(plain)))
	if length < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if length > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address format.
func ValidateEmail(email string) bool {
	email = strings.TrimSpace(email)
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
