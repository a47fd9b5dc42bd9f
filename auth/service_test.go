package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type mockUserRepository struct {
	mu      sync.RWMutex
	users   map[string]User
	byEmail map[string]string
	err     error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:   make(map[string]User),
		byEmail: make(map[string]string),
	}
}

func (r *mockUserRepository) Create(ctx context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return ErrEmailInUse
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *mockUserRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return User{}, r.err
	}
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *mockUserRepository) GetByID(ctx context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return User{}, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func newTestService(t *testing.T) (*Service, *mockUserRepository) {
	t.Helper()
	repo := newMockUserRepository()
	tm, err := NewTokenManager(TokenManagerConfig{Secret: testSecret})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	svc, err := NewService(ServiceConfig{
		Repository: repo,
		Hasher:     NewBcryptHasher(WithBcryptCost(4)), // MinCost keeps tests fast
		Tokens:     tm,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, repo
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	user, token, err := svc.Signup(ctx, "Ada", "Ada@Example.com", []byte("correct horse"))
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("Signup() email = %q, want lowercased", user.Email)
	}
	if token == "" {
		t.Fatal("Signup() returned empty token")
	}

	loggedIn, token2, err := svc.Login(ctx, "ada@example.com", []byte("correct horse"))
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("Login() user = %q, want %q", loggedIn.ID, user.ID)
	}
	if token2 == "" {
		t.Fatal("Login() returned empty token")
	}
}

func TestSignupRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	cases := []struct {
		name     string
		userName string
		email    string
		password string
		want     error
	}{
		{"missing name", "", "a@example.com", "long enough", ErrInvalidInput},
		{"bad email", "Ada", "not-an-email", "long enough", ErrInvalidInput},
		{"short password", "Ada", "a@example.com", "short", ErrPasswordTooShort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Signup(ctx, tc.userName, tc.email, []byte(tc.password))
			if !errors.Is(err, tc.want) {
				t.Fatalf("Signup() error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, _, err := svc.Signup(ctx, "Ada", "a@example.com", []byte("long enough")); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if _, _, err := svc.Signup(ctx, "Ada Again", "a@example.com", []byte("long enough")); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("Signup(duplicate) error = %v, want ErrEmailInUse", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, _, err := svc.Signup(ctx, "Ada", "a@example.com", []byte("long enough")); err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if _, _, err := svc.Login(ctx, "a@example.com", []byte("wrong password")); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownEmailLooksLikeBadPassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	if _, _, err := svc.Login(ctx, "nobody@example.com", []byte("whatever!")); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}
