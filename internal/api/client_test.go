package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(srv.URL, 5*time.Second, nil)
	require.NoError(t, err)
	return client, srv
}

func TestSignInParsesCookieExpiry(t *testing.T) {
	wantExp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": wantExp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/sign_in", r.URL.Path)
		var req SignInRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.Username)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: token, Path: "/"})
		w.WriteHeader(http.StatusOK)
	}))

	exp, err := client.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, wantExp.Unix(), exp.Unix())
}

func TestSignInRejectedMapsStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	}))

	_, err := client.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestUsernameAvailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/newuser/valid":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/auth/taken/valid":
			w.WriteHeader(http.StatusConflict)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	free, err := client.UsernameAvailable(context.Background(), "newuser")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = client.UsernameAvailable(context.Background(), "taken")
	require.NoError(t, err)
	assert.False(t, free)

	_, err = client.UsernameAvailable(context.Background(), "boom")
	assert.Error(t, err)
}

func TestCookiePersistsAcrossRequests(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/sign_in":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "opaque", Path: "/"})
			w.WriteHeader(http.StatusOK)
		case "/api/v1/case/history":
			ck, err := r.Cookie("session")
			if err != nil || ck.Value != "opaque" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"cases": []CaseSummary{}})
		}
	}))

	_, err := client.SignIn(context.Background(), SignInRequest{Username: "alice", Password: "password123"})
	require.NoError(t, err)

	_, err = client.CaseHistory(context.Background())
	assert.NoError(t, err)
}
