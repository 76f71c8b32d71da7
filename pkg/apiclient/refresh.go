package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"
)

const (
	refreshOutcomeSuccess = "success"
	refreshOutcomeFailure = "failure"
	refreshOutcomeMissing = "no_refresh_token"
)

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// refreshAccessToken exchanges the stored refresh token for a new access token
// and persists it. Callers holding the same refresh token share one exchange.
// Failures are returned as *AuthError, except for the cancellation of ctx,
// which is returned as the context error.
func (c *Client) refreshAccessToken(ctx context.Context) (string, error) {
	refresh, err := c.session.RefreshToken(ctx)
	if err != nil {
		c.telemetry.recordRefresh(ctx, refreshOutcomeFailure)
		return "", &AuthError{Reason: ReasonRefreshFailed, Err: err}
	}
	if refresh == "" {
		c.telemetry.recordRefresh(ctx, refreshOutcomeMissing)
		return "", &AuthError{Reason: ReasonNoRefreshToken}
	}

	// The exchange outlives a cancelled caller so that the others waiting on
	// it still get the result.
	ch := c.refreshGroup.DoChan(refresh, func() (any, error) {
		return c.exchangeRefreshToken(context.WithoutCancel(ctx), refresh)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for the access token refresh: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", &AuthError{Reason: ReasonRefreshFailed, Err: res.Err}
		}
		access, _ := res.Val.(string)

		return access, nil
	}
}

func (c *Client) exchangeRefreshToken(ctx context.Context, refresh string) (string, error) {
	ctx, span := c.telemetry.tracer.Start(ctx, "refresh access token", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	tokens, err := c.postRefresh(ctx, span, refresh)
	if err != nil {
		c.telemetry.recordRefresh(ctx, refreshOutcomeFailure)
		slogctx.Warn(ctx, "Could not refresh access token", "error", err)
		return "", err
	}
	c.telemetry.recordRefresh(ctx, refreshOutcomeSuccess)

	// A failed write only costs a refresh on the next request; the retry
	// carries the new token explicitly.
	if err := c.session.SetAccessToken(ctx, tokens.Access); err != nil {
		slogctx.Error(ctx, "Could not store refreshed access token", "error", err)
	}
	if tokens.Refresh != "" && tokens.Refresh != refresh {
		if err := c.session.SetRefreshToken(ctx, tokens.Refresh); err != nil {
			slogctx.Error(ctx, "Could not store rotated refresh token", "error", err)
		}
	}

	slogctx.Debug(ctx, "Access token refreshed", "rotated", tokens.Refresh != "" && tokens.Refresh != refresh)

	return tokens.Access, nil
}

func (c *Client) postRefresh(ctx context.Context, span trace.Span, refresh string) (refreshResponse, error) {
	u, err := c.resolve(c.refreshPath)
	if err != nil {
		return refreshResponse{}, err
	}

	body, err := json.Marshal(refreshRequest{Refresh: refresh})
	if err != nil {
		return refreshResponse{}, fmt.Errorf("encoding refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return refreshResponse{}, fmt.Errorf("creating refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	span.SetAttributes(attribute.String("url.full", req.URL.String()))

	resp, err := c.roundTrip(ctx, span, req)
	if err != nil {
		return refreshResponse{}, err
	}

	var tokens refreshResponse
	if err := resp.Decode(&tokens); err != nil {
		return refreshResponse{}, err
	}
	if strings.TrimSpace(tokens.Access) == "" {
		return refreshResponse{}, errors.New("refresh response carries no access token")
	}

	return tokens, nil
}
