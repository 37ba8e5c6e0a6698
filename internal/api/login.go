package api

import (
	"context"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is the login body as received. Its shape varies between
// backend versions, so interpretation is left to the session store.
type LoginResponse struct {
	Body map[string]any
}

func (c *Client) Login(ctx context.Context, cred Credentials) (*LoginResponse, error) {
	env, err := c.do(ctx, call{
		op:             "login",
		method:         http.MethodPost,
		path:           "login",
		body:           cred,
		fallback:       "Login failed. Please check your credentials.",
		statusOptional: true,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Body: env.raw}, nil
}
