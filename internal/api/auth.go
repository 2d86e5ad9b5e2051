package api

import (
	"context"
	"net/http"

	"sace/internal/model"
)

func (c *Client) Login(ctx context.Context, in model.LoginInput) (*model.AuthResponse, error) {
	return c.exchange(ctx, "/api/auth/login", in)
}

func (c *Client) Signup(ctx context.Context, in model.SignupInput) (*model.AuthResponse, error) {
	return c.exchange(ctx, "/api/auth/signup", in)
}

func (c *Client) GoogleLogin(ctx context.Context, in model.GoogleLoginInput) (*model.AuthResponse, error) {
	return c.exchange(ctx, "/api/auth/google", in)
}

func (c *Client) exchange(ctx context.Context, path string, payload any) (*model.AuthResponse, error) {
	req, err := jsonRequest(http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	req.credentialExchange = true

	var out model.AuthResponse
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodPost, path: "/api/auth/logout"}, nil)
}

// GetUserByEmail is used to revalidate a persisted session.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := get[model.User](ctx, c, "/api/auth/user/"+email)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
