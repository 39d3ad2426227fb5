package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"quizhub/internal/model"
)

// RegisterParams is the account-creation payload.
type RegisterParams struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the {user, access, refresh} shape shared by login and
// register.
type authResponse struct {
	User    *model.User `json:"user"`
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
}

func (c *Client) commitAuth(resp *authResponse) (*model.User, error) {
	if resp.User == nil || resp.Access == "" {
		return nil, fmt.Errorf("auth response missing user or tokens")
	}
	if err := c.store.SetTokens(resp.Access, resp.Refresh); err != nil {
		return nil, err
	}
	if err := c.store.SetUser(resp.User); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Login exchanges credentials for a session and commits it to the store.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	body, err := jsonPayload(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/auth/login/", nil, body)
	if err != nil {
		return nil, err
	}
	resp, err := decodeOne[authResponse](data)
	if err != nil {
		return nil, err
	}
	return c.commitAuth(resp)
}

// Register creates an account and commits the returned session.
func (c *Client) Register(ctx context.Context, p RegisterParams) (*model.User, error) {
	body, err := jsonPayload(p)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/auth/register/", nil, body)
	if err != nil {
		return nil, err
	}
	resp, err := decodeOne[authResponse](data)
	if err != nil {
		return nil, err
	}
	return c.commitAuth(resp)
}

// Logout tells the server best-effort and always clears local credentials.
func (c *Client) Logout(ctx context.Context) error {
	_, _ = c.do(ctx, http.MethodPost, "/auth/logout/", nil, nil)
	return c.store.Clear()
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*model.User, error) {
	data, err := c.do(ctx, http.MethodGet, "/auth/profile/", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[model.User](data)
}

// CreateGuest starts a guest session: locally identified, no durable server
// account. An empty username gets a generated one.
func (c *Client) CreateGuest(ctx context.Context, username string) (*model.User, error) {
	if username == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		username = "guest-" + id.String()[:8]
	}
	body, err := jsonPayload(map[string]string{"username": username})
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPost, "/guest/create/", nil, body)
	if err != nil {
		return nil, err
	}
	guest, err := decodeOne[model.User](data)
	if err != nil {
		return nil, err
	}
	guest.IsGuest = true
	if err := c.store.SetGuest(guest); err != nil {
		return nil, err
	}
	return guest, nil
}
