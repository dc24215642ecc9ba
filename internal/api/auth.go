package api

import (
	"context"
	"net/http"

	"tugestor-cli/internal/model"
)

func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	var out model.LoginResponse
	err := c.do(ctx, http.MethodPost, LoginPath, model.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, name, email, password string) (model.User, error) {
	var out model.User
	err := c.do(ctx, http.MethodPost, "/usuario/add", model.RegisterRequest{Name: name, Email: email, Password: password}, &out)
	return out, err
}
