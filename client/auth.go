package client

import (
	"context"
	"strings"

	"github.com/goliatone/go-school/client/session"
)

const (
	loginPath    = "/api/auth/login"
	registerPath = "/api/auth/register"
	logoutPath   = "/api/auth/logout"
	mePath       = "/api/auth/me"
)

// RegisterRequest is the sign up payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  session.Identity `json:"user"`
	Data  session.Identity `json:"data"`
}

// Login exchanges credentials for a token, stores it and signs the
// attached session in
func (c *Client) Login(ctx context.Context, email, password string) (session.Identity, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	var res loginResponse
	if err := c.Post(ctx, loginPath, map[string]string{
		"email":    email,
		"password": password,
	}, &res); err != nil {
		return nil, err
	}

	if res.Token == "" {
		return nil, ErrLoginFailed
	}

	identity := res.User
	if identity == nil {
		identity = res.Data
	}
	if identity == nil {
		decoded, err := session.DecodeClaims(res.Token)
		if err != nil {
			return nil, err
		}
		identity = decoded
	}

	if err := c.store.Save(res.Token); err != nil {
		return nil, err
	}

	if c.manager != nil {
		c.manager.SetIdentity(identity)
	}

	c.logger.Info("signed in", "user_id", identity.ID())

	return identity, nil
}

// Register creates an account, it does not sign in
func (c *Client) Register(ctx context.Context, req RegisterRequest) (session.Identity, error) {
	var res struct {
		Message string           `json:"message"`
		User    session.Identity `json:"user"`
	}

	if err := c.Post(ctx, registerPath, req, &res); err != nil {
		return nil, err
	}

	return res.User, nil
}

// Me returns the identity the server associates with the stored token
func (c *Client) Me(ctx context.Context) (session.Identity, error) {
	var res struct {
		User session.Identity `json:"user"`
	}

	if err := c.Get(ctx, mePath, &res); err != nil {
		return nil, err
	}

	return res.User, nil
}

// Logout revokes the token on the server when possible and always
// clears the local session
func (c *Client) Logout(ctx context.Context) error {
	if _, ok, _ := c.store.Load(); ok {
		if err := c.Post(ctx, logoutPath, nil, nil); err != nil {
			c.logger.Warn("server logout failed", "error", err)
		}
	}

	if c.manager != nil {
		return c.manager.Logout()
	}
	return c.store.Clear()
}
