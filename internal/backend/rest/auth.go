package rest

import (
	"context"

	"github.com/bonssss/chat-app/internal/backend"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SignUp creates an account and adopts the returned session.
func (c *Client) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	var resp sessionResponse
	err := c.doJSON(ctx, "POST", "/auth/signup", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	session := &backend.Session{
		UserID:      resp.UserID,
		Email:       resp.Email,
		AccessToken: resp.AccessToken,
	}
	c.setSession(session)
	return session, nil
}

// SignIn authenticates and adopts the returned session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	var resp sessionResponse
	err := c.doJSON(ctx, "POST", "/auth/signin", credentialsRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	session := &backend.Session{
		UserID:      resp.UserID,
		Email:       resp.Email,
		AccessToken: resp.AccessToken,
	}
	c.setSession(session)
	return session, nil
}

// SignOut notifies the backend and drops the local session. The local
// session is dropped even if the notification fails.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Session() == nil {
		return nil
	}
	err := c.doJSON(ctx, "POST", "/auth/signout", nil, nil)
	c.setSession(nil)
	return err
}

// User re-validates the current session against the backend.
func (c *Client) User(ctx context.Context) (*backend.Session, error) {
	s := c.Session()
	if s == nil {
		return nil, backend.ErrUnauthenticated
	}

	var resp userResponse
	if err := c.doJSON(ctx, "GET", "/auth/user", nil, &resp); err != nil {
		return nil, err
	}

	return &backend.Session{
		UserID:      resp.ID,
		Email:       resp.Email,
		AccessToken: s.AccessToken,
	}, nil
}
