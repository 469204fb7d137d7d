package api

import (
	"context"
	"net/http"
	"net/url"

	"social-wallet-client-go/internal/models"
)

func (c *Client) GetProfile(ctx context.Context, token, username string) (*models.ProfileDetail, error) {
	cl := call{
		op:       "get_profile",
		method:   http.MethodGet,
		path:     "/users/" + url.PathEscape(username),
		token:    token,
		fallback: "Failed to fetch profile",
	}
	var profile models.ProfileDetail
	if err := c.doJSON(ctx, cl, &profile, "data.user", "data", "user"); err != nil {
		return nil, err
	}
	return &profile, nil
}
