package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sobebarali/mini-task-tracker/auth"
	testpostgres "github.com/sobebarali/mini-task-tracker/internal/testutil/postgrescontainer"
)

var testDB *sql.DB

func TestMain(m *testing.M) {
	if err := testpostgres.Setup(); err != nil {
		fmt.Println("postgres tests skipped:", err)
		os.Exit(0)
	}

	db, err := Open(WithDSN(testpostgres.DSN()))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open test database:", err)
		os.Exit(1)
	}
	testDB = db

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := ApplyMigrations(ctx, testDB, Schema...); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, "failed to apply schema:", err)
		os.Exit(1)
	}
	cancel()

	code := m.Run()

	_ = testDB.Close()
	if err := testpostgres.Teardown(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: failed to stop postgres test container:", err)
	}

	os.Exit(code)
}

func createTestUser(t *testing.T) auth.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := auth.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("user-%s@example.com", uuid.NewString()),
		Name:         "Test User",
		PasswordHash: []byte("not-a-real-hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := NewUserRepository(testDB).Create(context.Background(), user); err != nil {
		t.Fatalf("Create() user error = %v", err)
	}
	return user
}
