package apiclient

import (
	"context"
	"net/http"
)

// ListLogs returns the activity log. The backend restricts it to superusers.
func (c *Client) ListLogs(ctx context.Context) ([]ActivityLog, error) {
	return doJSON[[]ActivityLog](ctx, c, &Request{Method: http.MethodGet, Path: "logs/"})
}
