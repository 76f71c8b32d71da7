package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListTasks returns the tasks of the user. A non-empty status filters them.
func (c *Client) ListTasks(ctx context.Context, status TaskStatus) ([]Task, error) {
	req := &Request{Method: http.MethodGet, Path: "tasks/"}
	if status != "" {
		if !status.Valid() {
			return nil, &ValidationError{Fields: []FieldError{{Field: "status", Message: "Must be one of pending, in-progress, completed."}}}
		}
		req.Query = url.Values{"status": {string(status)}}
	}

	return doJSON[[]Task](ctx, c, req)
}

func (c *Client) GetTask(ctx context.Context, id int64) (Task, error) {
	return doJSON[Task](ctx, c, &Request{Method: http.MethodGet, Path: taskPath(id)})
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (Task, error) {
	if err := in.validate(true, c.now()); err != nil {
		return Task{}, err
	}
	if in.Status == nil {
		in.Status = Ptr(TaskStatusPending)
	}

	return doJSON[Task](ctx, c, &Request{Method: http.MethodPost, Path: "tasks/", Body: in})
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskInput) (Task, error) {
	if err := in.validate(false, c.now()); err != nil {
		return Task{}, err
	}

	return doJSON[Task](ctx, c, &Request{Method: http.MethodPatch, Path: taskPath(id), Body: in})
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.Do(ctx, &Request{Method: http.MethodDelete, Path: taskPath(id)})
	return err
}

func taskPath(id int64) string {
	return fmt.Sprintf("tasks/%d/", id)
}
