package client

import (
	"context"
	"errors"
	"net/http"
)

// ErrInvalidCredentials is returned for logins the server refused with a
// 400 or 401. The text is the user-facing message.
var ErrInvalidCredentials = errors.New("Invalid username or password")

// Profile is the server's view of the authenticated user.
type Profile struct {
	Username string   `json:"username"`
	Tenants  []string `json:"tenants"`
}

// Login exchanges credentials for a session. On success the session holds
// the username and the first tenant of the user's tenant list. A 400 or 401
// maps to ErrInvalidCredentials; any other failure passes the server
// payload through unchanged as an *APIError.
func (c *Client) Login(ctx context.Context, username, password string) (*Profile, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}

	var resp struct {
		Username string   `json:"username"`
		Tenants  []string `json:"tenants"`
		Token    string   `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/authenticate", nil, body, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) &&
			(apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	tenant := ""
	if len(resp.Tenants) > 0 {
		tenant = resp.Tenants[0]
	}
	c.setToken(resp.Token)
	c.session.Create(resp.Username, tenant)

	return &Profile{Username: resp.Username, Tenants: resp.Tenants}, nil
}

// Logout posts to the logout endpoint and then clears the local session
// unconditionally, whatever the network outcome was.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/authenticate/logout", nil, nil, nil)

	c.setToken("")
	c.session.Destroy()

	return err
}

// CurrentUser returns the authenticated user. A session that already holds
// a username answers from the cache with no network call; otherwise a
// status check against the auth endpoint establishes the session.
func (c *Client) CurrentUser(ctx context.Context) (*Profile, error) {
	if c.session.IsAuthenticated() {
		profile := &Profile{Username: c.session.Username()}
		if tenant := c.session.Tenant(); tenant != "" {
			profile.Tenants = []string{tenant}
		}
		return profile, nil
	}

	var resp Profile
	if err := c.do(ctx, http.MethodGet, "/api/authenticate", nil, nil, &resp); err != nil {
		return nil, err
	}

	tenant := ""
	if len(resp.Tenants) > 0 {
		tenant = resp.Tenants[0]
	}
	c.session.Create(resp.Username, tenant)

	return &resp, nil
}
