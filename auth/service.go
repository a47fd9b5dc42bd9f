package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates signup and login: hashing, persistence, and token
// issuance.
type Service struct {
	repo   UserRepository
	hasher PasswordHasher
	tokens *TokenManager
	now    func() time.Time
	newID  func() string
}

// ServiceConfig wires dependencies for Service.
type ServiceConfig struct {
	Repository UserRepository
	Hasher     PasswordHasher
	Tokens     *TokenManager
	Now        func() time.Time
	NewID      func() string
}

// NewService builds a Service; repository, hasher, and token manager are all
// required.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil || cfg.Hasher == nil || cfg.Tokens == nil {
		return nil, fmt.Errorf("%w: repository, hasher, and tokens are required", ErrInvalidInput)
	}
	svc := &Service{
		repo:   cfg.Repository,
		hasher: cfg.Hasher,
		tokens: cfg.Tokens,
		now:    cfg.Now,
		newID:  cfg.NewID,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc, nil
}

// Signup validates the input, persists a new user, and returns the user with
// a fresh access token.
func (s *Service) Signup(ctx context.Context, name, email string, password []byte) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, "", fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !ValidateEmail(email) {
		return User{}, "", fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return User{}, "", err
	}

	now := s.now().UTC()
	user := User{
		ID:           s.newID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the user with a fresh access token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email string, password []byte) (User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) == 0 {
		return User{}, "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, "", ErrInvalidCredentials
		}
		return User{}, "", err
	}

	if err := s.hasher.Compare(ctx, password, user.PasswordHash); err != nil {
		return User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}
