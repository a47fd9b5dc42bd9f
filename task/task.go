// Package task holds the task domain: the owned Task entity, the list filter
// value object, the repository contract, and the cached listing layer that
// fronts it.
package task

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("task: not found")
	ErrInvalidInput = errors.New("task: invalid input")
)

// Field limits enforced on create and update.
const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a recognized status value.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is an owned entity; only the owner can read or mutate it. CreatedAt is
// assigned at creation and is the descending sort key for listings.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Owner       string     `json:"owner"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Filters captures the optional constraints of a list request. A nil field
// means the dimension is unconstrained. DueBefore is an inclusive upper bound
// ("due on or before").
type Filters struct {
	Status    *Status
	DueBefore *time.Time
}

// Empty reports whether no constraint is present on any dimension.
func (f Filters) Empty() bool {
	return f.Status == nil && f.DueBefore == nil
}

// CreateInput carries the caller-supplied fields for a new task.
type CreateInput struct {
	Title       string
	Description string
	Status      Status
	DueDate     *time.Time
}

// Patch applies a partial update; nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
	DueDate     *time.Time
}

// Repository abstracts task persistence. List must return tasks sorted by
// CreatedAt descending, and every operation is scoped to one owner.
type Repository interface {
	Create(ctx context.Context, t Task) error
	Get(ctx context.Context, owner, id string) (Task, error)
	List(ctx context.Context, owner string, f Filters) ([]Task, error)
	Update(ctx context.Context, owner, id string, patch Patch) (Task, error)
	Delete(ctx context.Context, owner, id string) error
}
