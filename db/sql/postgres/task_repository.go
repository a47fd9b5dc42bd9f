package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/sobebarali/mini-task-tracker/task"
)

const taskColumns = "id, title, description, status, due_date, owner, created_at"

// TaskRepository persists task.Task records inside PostgreSQL. All statements
// are owner-scoped.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository wraps an existing *sql.DB connection.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) error {
	const query = `INSERT INTO tasks (id, title, description, status, due_date, owner, created_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.Title, t.Description, t.Status, t.DueDate, t.Owner, t.CreatedAt)
	return translateTaskError(err)
}

func (r *TaskRepository) Get(ctx context.Context, owner, id string) (task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE owner = $1 AND id = $2`
	return r.scanTask(r.db.QueryRowContext(ctx, query, owner, id))
}

// List returns the owner's tasks matching f, newest first.
func (r *TaskRepository) List(ctx context.Context, owner string, f task.Filters) ([]task.Task, error) {
	var (
		clauses = []string{"owner = $1"}
		args    = []any{owner}
	)
	if f.Status != nil {
		args = append(args, *f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.DueBefore != nil {
		args = append(args, *f.DueBefore)
		clauses = append(clauses, fmt.Sprintf("due_date <= $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateTaskError(err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, translateTaskError(err)
	}
	return tasks, nil
}

// Update reads the owner's task, applies the patch, and writes it back.
func (r *TaskRepository) Update(ctx context.Context, owner, id string, patch task.Patch) (task.Task, error) {
	t, err := r.Get(ctx, owner, id)
	if err != nil {
		return task.Task{}, err
	}

	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}

	const query = `UPDATE tasks SET title = $3, description = $4, status = $5, due_date = $6
                   WHERE owner = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, owner, id, t.Title, t.Description, t.Status, t.DueDate)
	if err != nil {
		return task.Task{}, translateTaskError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, owner, id string) error {
	const query = `DELETE FROM tasks WHERE owner = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, owner, id)
	if err != nil {
		return translateTaskError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *TaskRepository) scanTask(row *sql.Row) (task.Task, error) {
	t, err := scanTaskRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, err
	}
	return t, nil
}

func scanTaskRow(row rowScanner) (task.Task, error) {
	var (
		t   task.Task
		due sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&due,
		&t.Owner,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, err
		}
		return task.Task{}, translateTaskError(err)
	}
	if due.Valid {
		when := due.Time
		t.DueDate = &when
	}
	return t, nil
}

func translateTaskError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "22P02" {
		// Malformed UUID in a lookup behaves like a missing row.
		return task.ErrNotFound
	}
	return err
}
