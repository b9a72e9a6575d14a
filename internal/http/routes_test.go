package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/http/middleware"
	"todo_webapp/internal/repository"
	"todo_webapp/internal/service"
	"todo_webapp/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, store repository.TaskStore) *gin.Engine {
	t.Helper()
	if store == nil {
		store = repository.NewMemoryTaskRepository()
	}
	return NewRouter(Deps{
		Tasks:   service.NewTaskService(store, validation.MustNew()),
		Items:   repository.NewMemoryItemRepository(),
		Version: "test",
	})
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeTask(t *testing.T, rec *httptest.ResponseRecorder) domain.Task {
	t.Helper()
	var task domain.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task), rec.Body.String())
	return task
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body["error"]
}

func titles(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestCreateTask(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/tasks", `{"title":"  Buy milk  ","dueDate":"2024-05-01","sortOrder":3}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	task := decodeTask(t, rec)
	assert.Positive(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, "", task.Description)
	assert.False(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.Equal(t, "2024-05-01", *task.DueDate)
	assert.EqualValues(t, 3, task.SortOrder)
	assert.False(t, task.CreatedAt.IsZero())

	rec = do(t, r, http.MethodGet, "/api/tasks/"+jsonID(task.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	if diff := cmp.Diff(task, decodeTask(t, rec)); diff != "" {
		t.Fatalf("fetched task differs (-created +fetched):\n%s", diff)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	long := strings.Repeat("a", 256)
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing title", `{}`, "title is required"},
		{"blank title", `{"title":"   "}`, "title is required"},
		{"numeric title", `{"title":42}`, "title is required"},
		{"long title", `{"title":"` + long + `"}`, "title cannot exceed 255 characters"},
		{"long description", `{"title":"x","description":"` + strings.Repeat("d", 1001) + `"}`, "description cannot exceed 1000 characters"},
		{"bad date format", `{"title":"x","dueDate":"05/01/2024"}`, "due date must be in YYYY-MM-DD format"},
		{"impossible date", `{"title":"x","dueDate":"2023-02-30"}`, "due date is not a valid calendar date"},
		{"not an object", `[1,2]`, "request body must be a JSON object"},
		{"malformed json", `{"title":`, "invalid request body"},
		{"nul character", `{"title":"a\u0000"}`, "title cannot contain null characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, nil)
			rec := do(t, r, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, errorMessage(t, rec), tt.want)

			rec = do(t, r, http.MethodGet, "/api/tasks", "")
			assert.JSONEq(t, `[]`, rec.Body.String(), "nothing must be stored on a rejected create")
		})
	}
}

func TestCreateTaskBoundaryLengths(t *testing.T) {
	r := newTestRouter(t, nil)
	body := `{"title":"` + strings.Repeat("t", 255) + `","description":"` + strings.Repeat("d", 1000) + `"}`
	rec := do(t, r, http.MethodPost, "/api/tasks", body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateTaskReportsEveryProblem(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := do(t, r, http.MethodPost, "/api/tasks", `{"title":"","description":"`+strings.Repeat("d", 1001)+`","dueDate":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	msg := errorMessage(t, rec)
	assert.Contains(t, msg, "title is required")
	assert.Contains(t, msg, "description cannot exceed 1000 characters")
	assert.Contains(t, msg, "due date must be in YYYY-MM-DD format")
}

func TestListTasksFilterAndSort(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, body := range []string{
		`{"title":"B","dueDate":"2024-03-01"}`,
		`{"title":"A"}`,
		`{"title":"C","dueDate":"2024-01-01","completed":true}`,
	} {
		require.Equal(t, http.StatusCreated, do(t, r, http.MethodPost, "/api/tasks", body).Code)
	}

	list := func(query string) []string {
		rec := do(t, r, http.MethodGet, "/api/tasks"+query, "")
		require.Equal(t, http.StatusOK, rec.Code)
		var tasks []domain.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		return titles(tasks)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"C", "B", "A"}},
		{"?status=active&sort=title", []string{"A", "B"}},
		{"?status=completed", []string{"C"}},
		{"?status=all&sort=createdAt", []string{"C", "A", "B"}},
		{"?status=weird&sort=bogus", []string{"C", "B", "A"}},
		{"?sort=title", []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, list(tt.query)); diff != "" {
			t.Errorf("GET /api/tasks%s (-want +got):\n%s", tt.query, diff)
		}
	}
}

func TestUpdateTaskReplacesFields(t *testing.T) {
	r := newTestRouter(t, nil)
	created := decodeTask(t, do(t, r, http.MethodPost, "/api/tasks",
		`{"title":"orig","description":"keep?","dueDate":"2024-01-01","sortOrder":9}`))

	rec := do(t, r, http.MethodPut, "/api/tasks/"+jsonID(created.ID), `{"title":"new"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeTask(t, rec)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "new", updated.Title)
	assert.Equal(t, "", updated.Description)
	assert.Nil(t, updated.DueDate)
	assert.Zero(t, updated.SortOrder)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))
}

func TestUpdateTaskErrors(t *testing.T) {
	r := newTestRouter(t, nil)
	created := decodeTask(t, do(t, r, http.MethodPost, "/api/tasks", `{"title":"x"}`))

	rec := do(t, r, http.MethodPut, "/api/tasks/999", `{"title":"y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", errorMessage(t, rec))

	rec = do(t, r, http.MethodPut, "/api/tasks/"+jsonID(created.ID), `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/tasks/abc", `{"title":"y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/tasks/", `{"title":"y"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskStatusOnlyTouchesCompleted(t *testing.T) {
	r := newTestRouter(t, nil)
	created := decodeTask(t, do(t, r, http.MethodPost, "/api/tasks",
		`{"title":"keep","description":"d","dueDate":"2024-06-01","sortOrder":4}`))
	path := "/api/tasks/" + jsonID(created.ID) + "/status"

	rec := do(t, r, http.MethodPatch, path, `{"completed":true,"title":"ignored"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decodeTask(t, rec)

	want := created
	want.Completed = true
	want.UpdatedAt = patched.UpdatedAt
	if diff := cmp.Diff(want, patched); diff != "" {
		t.Fatalf("PATCH changed more than completed (-want +got):\n%s", diff)
	}

	for _, body := range []string{`{"completed":"yes"}`, `{"completed":1}`, `{}`} {
		rec = do(t, r, http.MethodPatch, path, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "completed status must be a boolean", errorMessage(t, rec), body)
	}

	rec = do(t, r, http.MethodPatch, "/api/tasks/4242/status", `{"completed":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	r := newTestRouter(t, nil)
	created := decodeTask(t, do(t, r, http.MethodPost, "/api/tasks", `{"title":"bye"}`))
	path := "/api/tasks/" + jsonID(created.ID)

	rec := do(t, r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully","id":`+jsonID(created.ID)+`}`, rec.Body.String())

	rec = do(t, r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/tasks/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMalformedIDsAreClientErrors(t *testing.T) {
	r := newTestRouter(t, nil)
	for _, path := range []string{"/api/tasks/abc", "/api/tasks/-1", "/api/tasks/0", "/api/tasks/1.5"} {
		rec := do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

type brokenStore struct{ repository.TaskStore }

var errStorage = errors.New(`ERROR: relation "tasks" column "due_date" does not exist (SQLSTATE 42P01) postgres`)

func (brokenStore) List(context.Context, domain.TaskQuery) ([]domain.Task, error) { return nil, errStorage }
func (brokenStore) GetByID(context.Context, int64) (*domain.Task, error) { return nil, errStorage }
func (brokenStore) Create(context.Context, domain.TaskInput) (*domain.Task, error) {
	return nil, errStorage
}
func (brokenStore) SetCompleted(context.Context, int64, bool) (*domain.Task, error) {
	return nil, errStorage
}
func (brokenStore) Delete(context.Context, int64) error { return errStorage }
func (brokenStore) Ping(context.Context) error          { return errStorage }

func TestStorageErrorsAreOpaque(t *testing.T) {
	r := newTestRouter(t, brokenStore{})
	requests := []struct{ method, path, body string }{
		{http.MethodGet, "/api/tasks", ""},
		{http.MethodGet, "/api/tasks/1", ""},
		{http.MethodPost, "/api/tasks", `{"title":"x"}`},
		{http.MethodPut, "/api/tasks/1", `{"title":"x"}`},
		{http.MethodPatch, "/api/tasks/1/status", `{"completed":true}`},
		{http.MethodDelete, "/api/tasks/1", ""},
	}
	for _, req := range requests {
		rec := do(t, r, req.method, req.path, req.body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, req.path)
		body := strings.ToLower(rec.Body.String())
		for _, leak := range []string{"relation", "column", "table", "postgres", "sqlstate", "goroutine", ".go:"} {
			assert.NotContains(t, body, leak, "%s %s leaked %q", req.method, req.path, leak)
		}
	}

	rec := do(t, r, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestItems(t *testing.T) {
	r := newTestRouter(t, nil)

	rec := do(t, r, http.MethodPost, "/api/items", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Item name is required", errorMessage(t, rec))

	rec = do(t, r, http.MethodPost, "/api/items", `{"name":"first"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var item domain.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))

	rec = do(t, r, http.MethodGet, "/api/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first"`)

	rec = do(t, r, http.MethodDelete, "/api/items/"+jsonID(item.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodDelete, "/api/items/"+jsonID(item.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, r, http.MethodDelete, "/api/items/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, nil)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/metrics", "").Code)
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRateLimitFallsBackToLocal(t *testing.T) {
	r := NewRouter(Deps{
		Tasks:     service.NewTaskService(repository.NewMemoryTaskRepository(), validation.MustNew()),
		Items:     repository.NewMemoryItemRepository(),
		RateLimit: RateLimiter(middleware.NewRedisRateLimiter("", "", 0), 2, time.Minute),
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, r, http.MethodGet, "/api/tasks", "").Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// health checks sit outside the limiter
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", "").Code)
}

func TestReadinessFollowsStorePing(t *testing.T) {
	r := newTestRouter(t, nil)
	rec := do(t, r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "up", body["store"])
	assert.Equal(t, "test", body["version"])

	r = newTestRouter(t, brokenStore{})
	for _, path := range []string{"/health", "/readyz"} {
		rec = do(t, r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		assert.JSONEq(t, `{"status":"unavailable","store":"down"}`, rec.Body.String(), path)
	}
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", "").Code)
}
