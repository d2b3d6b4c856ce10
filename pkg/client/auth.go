package client

import (
	"context"
	"errors"
	"net/http"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthResult is the data of a successful login or registration
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type userData struct {
	User *User `json:"user"`
}

type tokenData struct {
	Token string `json:"token"`
}

type linkedInURLData struct {
	URL     string `json:"url"`
	AuthURL string `json:"authUrl"`
}

// ErrIncompleteAuth means a 2xx auth response lacked its token or user
var ErrIncompleteAuth = errors.New("auth response missing token or user")

// Login authenticates with email and password. The token is returned, not
// stored; callers that want it on later requests call SetToken.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var resp AuthResult
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: password}, &resp, nil); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, ErrIncompleteAuth
	}
	return &resp, nil
}

// Register creates a new user account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	var resp AuthResult
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp, nil); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.User == nil {
		return nil, ErrIncompleteAuth
	}
	return &resp, nil
}

// Verify returns the user that owns token
func (c *Client) Verify(ctx context.Context, token string) (*User, error) {
	var resp userData
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/auth/verify", token, nil, &resp, nil); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, ErrIncompleteAuth
	}
	return resp.User, nil
}

// Refresh exchanges token for a new one
func (c *Client) Refresh(ctx context.Context, token string) (string, error) {
	var resp tokenData
	if _, err := c.do(ctx, http.MethodPost, "/api/v1/auth/refresh", token, struct{}{}, &resp, nil); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrIncompleteAuth
	}
	return resp.Token, nil
}

// LinkedInAuthURL returns the URL that starts the LinkedIn authorization flow
func (c *Client) LinkedInAuthURL(ctx context.Context, token string) (string, error) {
	var resp linkedInURLData
	if _, err := c.do(ctx, http.MethodGet, "/api/v1/auth/linkedin/url", token, nil, &resp, nil); err != nil {
		return "", err
	}
	if resp.URL != "" {
		return resp.URL, nil
	}
	if resp.AuthURL != "" {
		return resp.AuthURL, nil
	}
	return "", errors.New("auth response missing LinkedIn URL")
}

// DisconnectLinkedIn unlinks the caller's LinkedIn account
func (c *Client) DisconnectLinkedIn(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/auth/linkedin/disconnect", token, struct{}{}, nil, nil)
	return err
}
