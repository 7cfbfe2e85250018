package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"groundtruth/internal/models"
	"groundtruth/internal/service"
)

// stubAuth accepts one fixed credential pair and one fixed token.
type stubAuth struct{}

func (s *stubAuth) Login(_ context.Context, username, password string) (string, time.Time, *models.Profile, error) {
	if username != "alice" || password != "hunter2" {
		return "", time.Time{}, nil, service.ErrInvalidCredentials
	}
	profile := &models.Profile{Username: "alice", Tenants: []string{"acme"}}
	return "valid-token", time.Now().Add(time.Hour), profile, nil
}

func (s *stubAuth) Verify(_ context.Context, username, password string) (*service.SessionUser, error) {
	if username != "alice" || password != "hunter2" {
		return nil, service.ErrInvalidCredentials
	}
	return &service.SessionUser{Username: "alice", Tenants: []string{"acme"}, Password: password}, nil
}

func (s *stubAuth) Deserialize(token string) (*service.SessionUser, error) {
	if token != "valid-token" {
		return nil, service.ErrInvalidToken
	}
	return &service.SessionUser{Username: "alice", Tenants: []string{"acme"}}, nil
}

func (s *stubAuth) Logout(string) {}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := NewServer(Deps{
		Auth:   &stubAuth{},
		Logger: zap.NewNop(),
	}, logrus.New())
	return srv.Handler()
}

func doRequest(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestPing(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodGet, "/ping", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnmatchedRouteRendersJSON404(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodGet, "/no/such/route", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, float64(http.StatusNotFound), payload["status"])
}

func TestLoginFlow(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/authenticate", "",
		`{"username": "alice", "password": "hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Username string   `json:"username"`
		Tenants  []string `json:"tenants"`
		Token    string   `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "alice", payload.Username)
	assert.Equal(t, []string{"acme"}, payload.Tenants)
	assert.Equal(t, "valid-token", payload.Token)

	rec = doRequest(t, handler, http.MethodGet, "/api/authenticate", payload.Token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	rec := doRequest(t, newTestServer(t), http.MethodPost, "/api/authenticate", "",
		`{"username": "alice", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusRequiresAuthentication(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/authenticate", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/authenticate", "bogus", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTenantGuardRejectsForeignTenant(t *testing.T) {
	handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodGet, "/api/globex/classifiers", "valid-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBasicAuthStrategy(t *testing.T) {
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/authenticate", nil)
	req.SetBasicAuth("alice", "hunter2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/authenticate", nil)
	req.SetBasicAuth("alice", "wrong")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
