package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"social-wallet-client-go/internal/models"
	"social-wallet-client-go/internal/validation"
)

func (c *Client) GetUserCommunities(ctx context.Context, token string) (*models.UserCommunitiesPayload, error) {
	cl := call{
		op:       "get_user_communities",
		method:   http.MethodGet,
		path:     "/communities/mine",
		token:    token,
		fallback: "Failed to fetch communities",
	}
	var resp models.UserCommunitiesPayload
	if err := c.doJSON(ctx, cl, &resp, "data"); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GetCommunity(ctx context.Context, token, id string) (*models.Community, error) {
	cl := call{
		op:       "get_community",
		method:   http.MethodGet,
		path:     "/communities/" + url.PathEscape(id),
		token:    token,
		fallback: "Failed to fetch community",
	}
	var community models.Community
	if err := c.doJSON(ctx, cl, &community, "data.community", "data"); err != nil {
		return nil, err
	}
	return &community, nil
}

func (c *Client) ToggleFollow(ctx context.Context, token, id string) (*models.MessageResponse, error) {
	cl := call{
		op:       "toggle_follow",
		method:   http.MethodPost,
		path:     "/communities/" + url.PathEscape(id) + "/follow",
		token:    token,
		fallback: "Failed to update follow status",
	}
	var resp models.MessageResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) BecomeCreator(ctx context.Context, token, id string) (*models.MessageResponse, error) {
	cl := call{
		op:       "become_creator",
		method:   http.MethodPost,
		path:     "/communities/" + url.PathEscape(id) + "/become-creator",
		token:    token,
		fallback: "Failed to become creator",
	}
	var resp models.MessageResponse
	if err := c.doJSON(ctx, cl, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateCommunity posts the form as multipart/form-data; the photo goes
// under "profile_photo" with its file name sanitized.
func (c *Client) CreateCommunity(ctx context.Context, token string, form models.NewCommunity) (*models.Community, error) {
	upload := form.ProfilePhoto
	if upload != nil {
		sanitized := *upload
		sanitized.FileName = validation.SanitizeFileName(upload.FileName)
		upload = &sanitized
	}

	fields := [][2]string{
		{"name", form.Name},
		{"bio", form.Bio},
		{"cost", form.Cost},
	}
	body, contentType, err := multipartBody(fields, "profile_photo", upload)
	if err != nil {
		return nil, fmt.Errorf("create community: encode form: %w", err)
	}

	cl := call{
		op:          "create_community",
		method:      http.MethodPost,
		path:        "/communities",
		token:       token,
		body:        body,
		contentType: contentType,
		fallback:    "Failed to create community",
	}
	var community models.Community
	if err := c.doJSON(ctx, cl, &community, "data.community", "data"); err != nil {
		return nil, err
	}
	return &community, nil
}
