// Package boardclient is the Go companion client for the taskhive server.
// It mirrors the browser board: drag-and-drop moves are applied to the local
// view immediately and rolled back if the server rejects them.
package boardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-success response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) MoveTask(ctx context.Context, taskID uuid.UUID, status models.TaskStatus) (*models.Task, error) {
	body := map[string]any{"status": status}
	task := &models.Task{}
	err := c.do(ctx, http.MethodPut, "/project/tasks/"+taskID.String(), body, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) RescheduleEvent(ctx context.Context, eventID uuid.UUID, day time.Time) (*models.ScheduleEvent, error) {
	body := map[string]any{"date": day.Format("2006-01-02")}
	event := &models.ScheduleEvent{}
	err := c.do(ctx, http.MethodPut, "/schedule/"+eventID.String(), body, event)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (c *Client) ClaimBounty(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	task := &models.Task{}
	err := c.do(ctx, http.MethodPut, "/bounty/"+taskID.String()+"/claim", struct{}{}, task)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (c *Client) ListProjects(ctx context.Context) ([]*models.Project, error) {
	var projects []*models.Project
	if err := c.do(ctx, http.MethodGet, "/project", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) ListSchedule(ctx context.Context) ([]*models.ScheduleEvent, error) {
	var events []*models.ScheduleEvent
	if err := c.do(ctx, http.MethodGet, "/schedule", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		return &APIError{Status: resp.StatusCode, Message: payload.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
