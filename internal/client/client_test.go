package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/isp-kanban/internal/models"
)

func TestListTasks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/tasks/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 1, "title": "Caída nodo Pirque", "node": "Nodo Pirque", "priority": "Crítica", "status": "Backlog"},
			{"id": 2, "title": "Cambio de ONT", "description": null, "priority": "Baja", "status": "Terminado"}
		]`))
	}))
	defer srv.Close()

	tasks, err := NewClient(srv.URL).ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, uint64(1), tasks[0].ID)
	assert.Equal(t, "Nodo Pirque", tasks[0].Node)
	assert.Equal(t, models.TaskPriorityCritical, tasks[0].Priority)
	assert.Equal(t, models.TaskStatusDone, tasks[1].Status)
	assert.Empty(t, tasks[1].Description)
}

func TestListTasks_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tasks, err := NewClient(srv.URL).ListTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestCreateTask_SendsDraftWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tasks/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 0, body["id"])
		assert.Equal(t, "Nueva tarea", body["title"])
		assert.Equal(t, "Juan", body["responsible_name"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 42, "title": "Nueva tarea", "responsible_name": "Juan", "priority": "Media", "status": "Backlog"}`))
	}))
	defer srv.Close()

	created, err := NewClient(srv.URL).CreateTask(context.Background(), models.Task{
		ID:              9,
		Title:           "Nueva tarea",
		ResponsibleName: "Juan",
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(42), created.ID)
}

func TestUpdateTask_UsesTaskPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tasks/7", r.URL.Path)
		var body models.Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	updated, err := NewClient(srv.URL).UpdateTask(context.Background(), models.Task{
		ID:     7,
		Title:  "t",
		Status: models.TaskStatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
}

func TestDeleteTask(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/tasks/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, NewClient(srv.URL+"/").DeleteTask(context.Background(), 3))
	assert.True(t, called)
}

func TestErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code": "NOT_FOUND", "message": "Task not found"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteTask(context.Background(), 99)
	require.Error(t, err)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "HTTP 404: Task not found (NOT_FOUND)", apiErr.Error())
}

func TestErrorResponse_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).ListTasks(context.Background())
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListTasks(context.Background())
	require.Error(t, err)
	var apiErr *Error
	assert.False(t, errors.As(err, &apiErr))
}

func TestGenerateDrafts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/generate", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sin señal en Pirque", body["text"])
		_, _ = w.Write([]byte(`{"tasks": [{"title": "Revisar OLT Pirque", "node": "Nodo Pirque", "priority": "Alta"}]}`))
	}))
	defer srv.Close()

	drafts, err := NewClient(srv.URL).GenerateDrafts(context.Background(), "sin señal en Pirque")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Revisar OLT Pirque", drafts[0].Title)
	assert.Equal(t, uint64(0), drafts[0].ID)
}

func TestWithTimeout_LeavesSharedClientAlone(t *testing.T) {
	c := NewClient("", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))

	assert.Zero(t, http.DefaultClient.Timeout)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.NotSame(t, http.DefaultClient, c.httpClient)
}

func TestWithTimeout_NilHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	var c *Client
	require.NotPanics(t, func() {
		c = NewClient(srv.URL, WithHTTPClient(nil), WithTimeout(2*time.Second))
	})
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)

	_, err := c.ListTasks(context.Background())
	require.NoError(t, err)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
