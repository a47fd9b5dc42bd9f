package api

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/sobebarali/mini-task-tracker/auth"
	"github.com/sobebarali/mini-task-tracker/cache/memory"
	"github.com/sobebarali/mini-task-tracker/httpx"
	"github.com/sobebarali/mini-task-tracker/task"
)

type memoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]auth.User
	byEmail map[string]string
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]auth.User), byEmail: make(map[string]string)}
}

func (r *memoryUserRepository) Create(ctx context.Context, user auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return auth.ErrEmailInUse
	}
	r.users[user.ID] = user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return r.users[id], nil
}

func (r *memoryUserRepository) GetByID(ctx context.Context, id string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return auth.User{}, auth.ErrUserNotFound
	}
	return user, nil
}

type memoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]task.Task
}

func newMemoryTaskRepository() *memoryTaskRepository {
	return &memoryTaskRepository{tasks: make(map[string]task.Task)}
}

func (r *memoryTaskRepository) Create(ctx context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[t.ID] = t
	return nil
}

func (r *memoryTaskRepository) Get(ctx context.Context, owner, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (r *memoryTaskRepository) List(ctx context.Context, owner string, f task.Filters) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []task.Task
	for _, t := range r.tasks {
		if t.Owner != owner {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryTaskRepository) Update(ctx context.Context, owner, id string, patch task.Patch) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return task.Task{}, task.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
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
	r.tasks[id] = t
	return t, nil
}

func (r *memoryTaskRepository) Delete(ctx context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return task.ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

func newTestAPI(t *testing.T) (*httpx.TestServer, *httpx.Client) {
	t.Helper()

	tokens, err := auth.NewTokenManager(auth.TokenManagerConfig{
		Secret: []byte("0123456789abcdef0123456789abcdef"),
	})
	if err != nil {
		t.Fatalf("NewTokenManager() error = %v", err)
	}
	authSvc, err := auth.NewService(auth.ServiceConfig{
		Repository: newMemoryUserRepository(),
		Hasher:     auth.NewBcryptHasher(auth.WithBcryptCost(4)),
		Tokens:     tokens,
	})
	if err != nil {
		t.Fatalf("auth.NewService() error = %v", err)
	}

	taskSvc, err := task.NewService(task.ServiceConfig{
		Repository: newMemoryTaskRepository(),
		Cache:      task.NewListCache(memory.NewStore()),
	})
	if err != nil {
		t.Fatalf("task.NewService() error = %v", err)
	}

	srv := httpx.NewServer(httpx.WithMiddlewares(httpx.RecoverMiddleware()))
	handler := &Handler{Auth: authSvc, Tasks: taskSvc, Tokens: tokens}
	srv.RegisterRoutes(handler.Register)

	ts := httpx.NewTestServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts, httpx.NewClient(httpx.WithBaseURL(ts.BaseURL()))
}

func signupSession(t *testing.T, client *httpx.Client, email string) sessionPayload {
	t.Helper()
	var env struct {
		Data sessionPayload `json:"data"`
	}
	_, err := client.Post(context.Background(), "/api/auth/signup", signupRequest{
		Name:     "Test User",
		Email:    email,
		Password: "long enough password",
	}, &env)
	if err != nil {
		t.Fatalf("signup error = %v", err)
	}
	if env.Data.Token == "" {
		t.Fatal("signup returned empty token")
	}
	return env.Data
}

func TestHealthEndpoint(t *testing.T) {
	_, client := newTestAPI(t)

	var env struct {
		Data map[string]string `json:"data"`
	}
	if _, err := client.Get(context.Background(), "/health", &env); err != nil {
		t.Fatalf("GET /health error = %v", err)
	}
	if env.Data["status"] != "ok" {
		t.Fatalf("GET /health data = %v", env.Data)
	}
}

func TestSignupLoginFlow(t *testing.T) {
	_, client := newTestAPI(t)
	ctx := context.Background()

	session := signupSession(t, client, "flow@example.com")
	if session.User.Email != "flow@example.com" {
		t.Fatalf("signup user email = %q", session.User.Email)
	}

	var loginEnv struct {
		Data sessionPayload `json:"data"`
	}
	if _, err := client.Post(ctx, "/api/auth/login", loginRequest{
		Email:    "flow@example.com",
		Password: "long enough password",
	}, &loginEnv); err != nil {
		t.Fatalf("login error = %v", err)
	}
	if loginEnv.Data.User.ID != session.User.ID {
		t.Fatalf("login user = %q, want %q", loginEnv.Data.User.ID, session.User.ID)
	}

	resp, err := client.Post(ctx, "/api/auth/signup", signupRequest{
		Name:     "Copycat",
		Email:    "flow@example.com",
		Password: "long enough password",
	}, nil)
	if err == nil || resp.StatusCode() != httpx.StatusConflict {
		t.Fatalf("duplicate signup: err = %v, status = %d, want 409", err, resp.StatusCode())
	}

	resp, err = client.Post(ctx, "/api/auth/login", loginRequest{
		Email:    "flow@example.com",
		Password: "wrong password!",
	}, nil)
	if err == nil || resp.StatusCode() != httpx.StatusUnauthorized {
		t.Fatalf("bad login: err = %v, status = %d, want 401", err, resp.StatusCode())
	}
}

func TestTaskRoutesRequireAuth(t *testing.T) {
	_, client := newTestAPI(t)

	resp, err := client.Get(context.Background(), "/api/tasks", nil)
	if err == nil || resp.StatusCode() != httpx.StatusUnauthorized {
		t.Fatalf("unauthenticated list: err = %v, status = %d, want 401", err, resp.StatusCode())
	}
}

func TestTaskLifecycle(t *testing.T) {
	_, client := newTestAPI(t)
	ctx := context.Background()
	session := signupSession(t, client, "tasks@example.com")
	bearer := httpx.WithBearer(session.Token)

	title := "write the report"
	desc := "quarterly numbers"
	var createEnv struct {
		Data task.Task `json:"data"`
	}
	resp, err := client.Post(ctx, "/api/tasks", taskRequest{
		Title:       &title,
		Description: &desc,
	}, &createEnv, bearer)
	if err != nil {
		t.Fatalf("create task error = %v", err)
	}
	if resp.StatusCode() != httpx.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode())
	}
	created := createEnv.Data
	if created.Status != task.StatusPending {
		t.Fatalf("create status field = %q, want pending", created.Status)
	}
	if created.Owner != session.User.ID {
		t.Fatalf("create owner = %q, want %q", created.Owner, session.User.ID)
	}

	var getEnv struct {
		Data task.Task `json:"data"`
	}
	if _, err := client.Get(ctx, "/api/tasks/"+created.ID, &getEnv, bearer); err != nil {
		t.Fatalf("get task error = %v", err)
	}
	if getEnv.Data.Title != title {
		t.Fatalf("get title = %q, want %q", getEnv.Data.Title, title)
	}

	var listEnv struct {
		Data  task.ListResult `json:"data"`
		Error json.RawMessage `json:"error"`
	}
	if _, err := client.Get(ctx, "/api/tasks", &listEnv, bearer); err != nil {
		t.Fatalf("list tasks error = %v", err)
	}
	if listEnv.Data.Total != 1 || len(listEnv.Data.Tasks) != 1 {
		t.Fatalf("list = %+v, want 1 task", listEnv.Data)
	}
	if string(listEnv.Error) != "null" {
		t.Fatalf("list error field = %s, want null", listEnv.Error)
	}

	newStatus := string(task.StatusCompleted)
	var updateEnv struct {
		Data task.Task `json:"data"`
	}
	if _, err := client.Put(ctx, "/api/tasks/"+created.ID, taskRequest{Status: &newStatus}, &updateEnv, bearer); err != nil {
		t.Fatalf("update task error = %v", err)
	}
	if updateEnv.Data.Status != task.StatusCompleted {
		t.Fatalf("update status field = %q, want completed", updateEnv.Data.Status)
	}

	// Listing again must observe the mutation, not a stale cache entry.
	if _, err := client.Get(ctx, "/api/tasks", &listEnv, bearer, httpx.WithQuery(map[string]string{"status": "completed"})); err != nil {
		t.Fatalf("list completed error = %v", err)
	}
	if listEnv.Data.Total != 1 {
		t.Fatalf("list completed = %+v, want the updated task", listEnv.Data)
	}

	if _, err := client.Delete(ctx, "/api/tasks/"+created.ID, nil, bearer); err != nil {
		t.Fatalf("delete task error = %v", err)
	}
	resp, err = client.Get(ctx, "/api/tasks/"+created.ID, nil, bearer)
	if err == nil || resp.StatusCode() != httpx.StatusNotFound {
		t.Fatalf("get deleted: err = %v, status = %d, want 404", err, resp.StatusCode())
	}
	if _, err := client.Get(ctx, "/api/tasks", &listEnv, bearer); err != nil {
		t.Fatalf("list after delete error = %v", err)
	}
	if listEnv.Data.Total != 0 || len(listEnv.Data.Tasks) != 0 {
		t.Fatalf("list after delete = %+v, want empty", listEnv.Data)
	}
}

func TestTaskValidationAndFilters(t *testing.T) {
	_, client := newTestAPI(t)
	ctx := context.Background()
	session := signupSession(t, client, "filters@example.com")
	bearer := httpx.WithBearer(session.Token)

	empty := "   "
	resp, err := client.Post(ctx, "/api/tasks", taskRequest{Title: &empty}, nil, bearer)
	if err == nil || resp.StatusCode() != httpx.StatusBadRequest {
		t.Fatalf("blank title: err = %v, status = %d, want 400", err, resp.StatusCode())
	}

	resp, err = client.Get(ctx, "/api/tasks", nil, bearer, httpx.WithQuery(map[string]string{"status": "bogus"}))
	if err == nil || resp.StatusCode() != httpx.StatusBadRequest {
		t.Fatalf("bogus status filter: err = %v, status = %d, want 400", err, resp.StatusCode())
	}

	resp, err = client.Get(ctx, "/api/tasks", nil, bearer, httpx.WithQuery(map[string]string{"dueDate": "not-a-date"}))
	if err == nil || resp.StatusCode() != httpx.StatusBadRequest {
		t.Fatalf("bogus dueDate filter: err = %v, status = %d, want 400", err, resp.StatusCode())
	}

	dueSoon := "due soon"
	soon := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	if _, err := client.Post(ctx, "/api/tasks", taskRequest{Title: &dueSoon, DueDate: &soon}, nil, bearer); err != nil {
		t.Fatalf("create due-soon error = %v", err)
	}
	undated := "no due date"
	if _, err := client.Post(ctx, "/api/tasks", taskRequest{Title: &undated}, nil, bearer); err != nil {
		t.Fatalf("create undated error = %v", err)
	}

	var listEnv struct {
		Data task.ListResult `json:"data"`
	}
	dayAfter := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
	if _, err := client.Get(ctx, "/api/tasks", &listEnv, bearer, httpx.WithQuery(map[string]string{"dueDate": dayAfter})); err != nil {
		t.Fatalf("list by dueDate error = %v", err)
	}
	if listEnv.Data.Total != 1 || listEnv.Data.Tasks[0].Title != dueSoon {
		t.Fatalf("list by dueDate = %+v, want only the dated task", listEnv.Data)
	}
}

func TestOwnersCannotSeeEachOthersTasks(t *testing.T) {
	_, client := newTestAPI(t)
	ctx := context.Background()

	alice := signupSession(t, client, "alice@example.com")
	bob := signupSession(t, client, "bob@example.com")

	title := "alice's secret"
	var createEnv struct {
		Data task.Task `json:"data"`
	}
	if _, err := client.Post(ctx, "/api/tasks", taskRequest{Title: &title}, &createEnv, httpx.WithBearer(alice.Token)); err != nil {
		t.Fatalf("create error = %v", err)
	}

	resp, err := client.Get(ctx, "/api/tasks/"+createEnv.Data.ID, nil, httpx.WithBearer(bob.Token))
	if err == nil || resp.StatusCode() != httpx.StatusNotFound {
		t.Fatalf("cross-owner get: err = %v, status = %d, want 404", err, resp.StatusCode())
	}

	var listEnv struct {
		Data task.ListResult `json:"data"`
	}
	if _, err := client.Get(ctx, "/api/tasks", &listEnv, httpx.WithBearer(bob.Token)); err != nil {
		t.Fatalf("list error = %v", err)
	}
	if listEnv.Data.Total != 0 {
		t.Fatalf("bob's list = %+v, want empty", listEnv.Data)
	}
}
