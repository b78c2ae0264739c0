package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/isp-kanban/internal/models"
)

const (
	// DefaultBaseURL is the address the kanban API listens on locally
	DefaultBaseURL = "http://127.0.0.1:8000"

	DefaultTimeout = 10 * time.Second
)

// Client talks to the kanban task API
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sends requests through hc. A nil hc keeps the default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. A client passed to WithHTTPClient
// is copied, never changed.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a client for the API at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.httpClient == nil:
		timeout := c.timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout != 0:
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// Error is a non-success response from the API
type Error struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	if e.Code == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s (%s)", e.StatusCode, e.Message, e.Code)
}

// ListTasks fetches every task on the board
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// CreateTask posts a draft and returns the stored task with its assigned ID
func (c *Client) CreateTask(ctx context.Context, draft models.Task) (models.Task, error) {
	draft.ID = 0
	var created models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks/", draft, &created); err != nil {
		return models.Task{}, err
	}
	return created, nil
}

// UpdateTask replaces the stored task with the full record
func (c *Client) UpdateTask(ctx context.Context, task models.Task) (models.Task, error) {
	var updated models.Task
	if err := c.do(ctx, http.MethodPut, taskPath(task.ID), task, &updated); err != nil {
		return models.Task{}, err
	}
	return updated, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// GenerateDrafts asks the API to turn free-form incident text into task drafts.
// The drafts are not stored.
func (c *Client) GenerateDrafts(ctx context.Context, text string) ([]models.Task, error) {
	var result struct {
		Tasks []models.Task `json:"tasks"`
	}
	body := map[string]string{"text": text}
	if err := c.do(ctx, http.MethodPost, "/tasks/generate", body, &result); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

func taskPath(id uint64) string {
	return "/tasks/" + strconv.FormatUint(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
