package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sobebarali/mini-task-tracker/auth"
)

func TestUserRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)
	created := createTestUser(t)

	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != created.Email {
		t.Fatalf("GetByID() email = %q, want %q", byID.Email, created.Email)
	}
	if string(byID.PasswordHash) != string(created.PasswordHash) {
		t.Fatal("GetByID() password hash mismatch")
	}

	byEmail, err := repo.GetByEmail(ctx, created.Email)
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail() id = %q, want %q", byEmail.ID, created.ID)
	}
}

func TestUserRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)
	created := createTestUser(t)

	dupe := created
	dupe.ID = uuid.NewString()
	if err := repo.Create(ctx, dupe); !errors.Is(err, auth.ErrEmailInUse) {
		t.Fatalf("Create(duplicate email) error = %v, want ErrEmailInUse", err)
	}
}

func TestUserRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	if _, err := repo.GetByID(ctx, uuid.NewString()); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("GetByID(missing) error = %v, want ErrUserNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("GetByEmail(missing) error = %v, want ErrUserNotFound", err)
	}
}
