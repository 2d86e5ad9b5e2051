package api

import (
	"context"
	"net/http"
	"strconv"

	"sace/internal/model"
)

// Acknowledgement is the body of endpoints that only confirm an action.
type Acknowledgement struct {
	Message string `json:"message"`
}

func (c *Client) GetMe(ctx context.Context) (*model.User, error) {
	user, err := get[model.User](ctx, c, "/api/users/me")
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := get[model.User](ctx, c, "/api/users/"+strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateMe(ctx context.Context, in model.UpdateProfileInput) (*model.User, error) {
	return send[model.User](ctx, c, http.MethodPut, "/api/users/me", in)
}

func (c *Client) ChangePassword(ctx context.Context, in model.ChangePasswordInput) (*Acknowledgement, error) {
	return send[Acknowledgement](ctx, c, http.MethodPut, "/api/users/me/password", in)
}

func (c *Client) DeleteMe(ctx context.Context) (*Acknowledgement, error) {
	return send[Acknowledgement](ctx, c, http.MethodDelete, "/api/users/me", nil)
}
