// Package client talks to the tasks HTTP API and keeps the local view state
// the terminal UI renders from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"todo_webapp/internal/domain"
)

// APIError is any non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// TaskPayload is the body of POST /api/tasks and PUT /api/tasks/:id.
type TaskPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	DueDate     *string `json:"dueDate"`
	SortOrder   int64   `json:"sortOrder"`
}

// PayloadFrom copies the mutable fields of t.
func PayloadFrom(t domain.Task) TaskPayload {
	return TaskPayload{
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		DueDate:     t.DueDate,
		SortOrder:   t.SortOrder,
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:8080".
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) List(ctx context.Context, q domain.TaskQuery) ([]domain.Task, error) {
	params := url.Values{}
	params.Set("status", string(q.Status))
	params.Set("sort", string(q.Sort))

	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks?"+params.Encode(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Create(ctx context.Context, p TaskPayload) (*domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Update(ctx context.Context, id int64, p TaskPayload) (*domain.Task, error) {
	var t domain.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), p, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) SetCompleted(ctx context.Context, id int64, completed bool) (*domain.Task, error) {
	var t domain.Task
	body := map[string]bool{"completed": completed}
	if err := c.do(ctx, http.MethodPatch, taskPath(id)+"/status", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) Delete(ctx context.Context, id int64) (*domain.DeleteResult, error) {
	var res domain.DeleteResult
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
