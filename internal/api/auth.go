package api

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SignUpRequest is the registration payload.
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignInRequest is the credential payload.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUp registers a new account. The caller is expected to follow a
// successful sign-up with SignIn using the same credentials.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	if err := c.postJSON(ctx, "/api/v1/auth/sign_up", req, nil); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// SignIn authenticates and stores the session cookie in the client's jar.
// The returned time is the session expiry parsed from the auth cookie when
// the backend issues a JWT; zero when no expiry could be determined.
func (c *Client) SignIn(ctx context.Context, req SignInRequest) (time.Time, error) {
	if err := c.postJSON(ctx, "/api/v1/auth/sign_in", req, nil); err != nil {
		return time.Time{}, fmt.Errorf("sign in: %w", err)
	}
	return c.sessionExpiry(), nil
}

// SignOut invalidates the backend session.
func (c *Client) SignOut(ctx context.Context) error {
	if err := c.postJSON(ctx, "/api/v1/auth/sign_out", nil, nil); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// UsernameAvailable checks whether a username can still be registered.
// The backend answers 2xx for available and a 4xx otherwise.
func (c *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	path := "/api/v1/auth/" + url.PathEscape(username) + "/valid"
	err := c.getJSON(ctx, path, nil)
	if err == nil {
		return true, nil
	}
	if apiErr, ok := err.(*Error); ok && apiErr.StatusCode/100 == 4 {
		return false, nil
	}
	return false, fmt.Errorf("username availability: %w", err)
}

// sessionExpiry inspects the cookies stored for the backend and returns the
// exp claim of the first cookie value that parses as a JWT. The token is not
// verified; the client only needs the expiry to know when to drop the local
// session, the backend remains the authority on validity.
func (c *Client) sessionExpiry() time.Time {
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpClient.Jar == nil {
		return time.Time{}
	}
	parser := jwt.NewParser()
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		claims := jwt.MapClaims{}
		if _, _, err := parser.ParseUnverified(ck.Value, claims); err != nil {
			continue
		}
		exp, err := claims.GetExpirationTime()
		if err != nil || exp == nil {
			continue
		}
		return exp.Time
	}
	return time.Time{}
}
