package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	slogctx "github.com/veqryn/slog-context"
)

// Login exchanges the credentials for a token pair and stores both tokens in
// the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (TokenPair, error) {
	if err := creds.validate(); err != nil {
		return TokenPair{}, err
	}

	tokens, err := doJSON[TokenPair](ctx, c, &Request{
		Method:      http.MethodPost,
		Path:        "login/",
		Body:        creds,
		SkipAuth:    true,
		SkipRefresh: true,
	})
	if err != nil {
		return TokenPair{}, err
	}
	if tokens.Access == "" || tokens.Refresh == "" {
		return TokenPair{}, errors.New("login response carries no token pair")
	}

	if err := c.session.SetTokens(ctx, tokens.Access, tokens.Refresh); err != nil {
		return TokenPair{}, fmt.Errorf("storing tokens: %w", err)
	}

	slogctx.Info(ctx, "Logged in", "username", creds.Username)

	return tokens, nil
}

// Register creates a user account. It does not log the user in.
func (c *Client) Register(ctx context.Context, reg Registration) (Message, error) {
	if err := reg.validate(); err != nil {
		return Message{}, err
	}

	return doJSON[Message](ctx, c, &Request{
		Method:      http.MethodPost,
		Path:        "register/",
		Body:        reg,
		SkipAuth:    true,
		SkipRefresh: true,
	})
}

// Logout forgets both tokens. The backend keeps no session state to end.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.session.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	slogctx.Info(ctx, "Logged out")

	return nil
}

func (c *Client) IsSuperuser(ctx context.Context) (bool, error) {
	out, err := doJSON[struct {
		IsSuperuser bool `json:"is_superuser"`
	}](ctx, c, &Request{Method: http.MethodGet, Path: "check-superuser/"})
	if err != nil {
		return false, err
	}

	return out.IsSuperuser, nil
}
