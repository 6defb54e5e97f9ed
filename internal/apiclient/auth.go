package apiclient

import (
	"context"
	"fmt"
	"net/http"
)

type credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Login signs in and keeps the token in the client's store.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", credentials{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", credentials{
		Email:     email,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
	})
}

func (c *Client) authenticate(ctx context.Context, path string, in credentials) (*AuthResult, error) {
	r, err := jsonRequest(http.MethodPost, path, in)
	if err != nil {
		return nil, err
	}
	res, err := call[*AuthResult](ctx, c, r)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Token == "" {
		return nil, &APIError{Kind: KindServer, Message: "Aucun jeton dans la réponse"}
	}
	if err := c.Tokens.SetToken(res.Token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}
	return res, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	r, _ := jsonRequest(http.MethodGet, "/auth/me", nil)
	return call[*User](ctx, c, r)
}
