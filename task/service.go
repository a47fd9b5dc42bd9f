package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates task CRUD: mutations commit to the repository first
// and then invalidate the owner's cached listings; reads on the list path go
// through the cache.
type Service struct {
	repo  Repository
	cache *ListCache
	now   func() time.Time
	newID func() string
}

// ServiceConfig wires the dependencies for Service.
type ServiceConfig struct {
	Repository Repository
	Cache      *ListCache
	Now        func() time.Time
	NewID      func() string
}

// NewService builds a Service. Repository and Cache are required.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil || cfg.Cache == nil {
		return nil, fmt.Errorf("%w: repository and cache are required", ErrInvalidInput)
	}
	svc := &Service{
		repo:  cfg.Repository,
		cache: cfg.Cache,
		now:   cfg.Now,
		newID: cfg.NewID,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.newID == nil {
		svc.newID = uuid.NewString
	}
	return svc, nil
}

// Create validates the input, persists a new task for owner, and invalidates
// the owner's cached listings.
func (s *Service) Create(ctx context.Context, owner string, in CreateInput) (Task, error) {
	if owner == "" {
		return Task{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if err := validateCreate(in); err != nil {
		return Task{}, err
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}

	t := Task{
		ID:          s.newID(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
		Owner:       owner,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Task{}, err
	}

	s.cache.Invalidate(ctx, owner)
	return t, nil
}

// Get returns a single task, scoped to its owner.
func (s *Service) Get(ctx context.Context, owner, id string) (Task, error) {
	if owner == "" || id == "" {
		return Task{}, fmt.Errorf("%w: owner and id are required", ErrInvalidInput)
	}
	return s.repo.Get(ctx, owner, id)
}

// List returns the owner's tasks matching f, newest first, via the
// read-through cache.
func (s *Service) List(ctx context.Context, owner string, f Filters) (ListResult, error) {
	if owner == "" {
		return ListResult{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.cache.Fetch(ctx, owner, f, func(ctx context.Context) (ListResult, error) {
		tasks, err := s.repo.List(ctx, owner, f)
		if err != nil {
			return ListResult{}, err
		}
		if tasks == nil {
			tasks = []Task{}
		}
		return ListResult{Tasks: tasks, Total: len(tasks)}, nil
	})
}

// Update applies a partial patch to the owner's task and invalidates the
// owner's cached listings.
func (s *Service) Update(ctx context.Context, owner, id string, patch Patch) (Task, error) {
	if owner == "" || id == "" {
		return Task{}, fmt.Errorf("%w: owner and id are required", ErrInvalidInput)
	}
	if err := validatePatch(patch); err != nil {
		return Task{}, err
	}

	t, err := s.repo.Update(ctx, owner, id, patch)
	if err != nil {
		return Task{}, err
	}

	s.cache.Invalidate(ctx, owner)
	return t, nil
}

// Delete removes the owner's task and invalidates the owner's cached
// listings.
func (s *Service) Delete(ctx context.Context, owner, id string) error {
	if owner == "" || id == "" {
		return fmt.Errorf("%w: owner and id are required", ErrInvalidInput)
	}
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, owner)
	return nil
}

func validateCreate(in CreateInput) error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLength)
	}
	if len(in.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	if in.Status != "" && !in.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	return nil
}

func validatePatch(patch Patch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
		}
		if len(title) > MaxTitleLength {
			return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLength)
		}
	}
	if patch.Description != nil && len(*patch.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *patch.Status)
	}
	return nil
}
