package apiclient

import (
	"context"
	"net/http"
)

func (c *Client) Profile(ctx context.Context) (Profile, error) {
	return doJSON[Profile](ctx, c, &Request{Method: http.MethodGet, Path: "profile/"})
}

// UpdateProfile changes the fields set in upd and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Profile, error) {
	if err := upd.validate(); err != nil {
		return Profile{}, err
	}

	return doJSON[Profile](ctx, c, &Request{Method: http.MethodPatch, Path: "profile/", Body: upd})
}
