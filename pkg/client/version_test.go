package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestChecker(t *testing.T, local string, feed []VersionInfo, status int) *VersionChecker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(feed)
	}))
	t.Cleanup(srv.Close)
	return NewVersionChecker(srv.URL, local, zap.NewNop())
}

func TestCurrentReturnsFirstEntry(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", []VersionInfo{
		{Version: "1.2.0", Link: "https://example.com/1.2.0"},
		{Version: "1.1.0"},
	}, http.StatusOK)

	current, err := checker.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", current.Version)
	assert.Equal(t, "https://example.com/1.2.0", current.Link)
}

func TestCurrentEmptyFeed(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", []VersionInfo{}, http.StatusOK)

	current, err := checker.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, VersionInfo{}, current)
}

func TestCurrentHTTPError(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", nil, http.StatusBadGateway)

	_, err := checker.Current(context.Background())
	assert.Error(t, err)
}

func TestStatusLexicalComparison(t *testing.T) {
	tests := []struct {
		name   string
		local  string
		remote string
		want   VersionStatus
	}{
		{"remote greater means old", "1.0.0", "1.2.0", VersionOld},
		{"equal means current", "1.2.0", "1.2.0", VersionCurrent},
		{"remote smaller means development", "1.3.0", "1.2.0", VersionDevelopment},
		// The comparison is deliberately lexical, not semver-aware.
		{"multi-digit component compares lexically", "0.0.9", "0.0.10", VersionDevelopment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newTestChecker(t, tt.local, []VersionInfo{{Version: tt.remote}}, http.StatusOK)
			status, err := checker.Status(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
		})
	}
}

func TestAlertFiresAtMostOnce(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", []VersionInfo{{Version: "2.0.0", Link: "https://example.com"}}, http.StatusOK)
	bus := NewAlertBus()

	for i := 0; i < 3; i++ {
		checker.Alert(context.Background(), bus)
	}

	require.Equal(t, 1, bus.Len())
	alert := bus.List()[0]
	assert.Equal(t, LevelInfo, alert.Level)
	assert.True(t, alert.Dismissable)
	assert.Equal(t, "https://example.com", alert.Link)
}

func TestAlertSilentWhenCurrent(t *testing.T) {
	checker := newTestChecker(t, "1.0.0", []VersionInfo{{Version: "1.0.0"}}, http.StatusOK)
	bus := NewAlertBus()

	checker.Alert(context.Background(), bus)
	assert.Zero(t, bus.Len())

	// The informed flag is set by the completed check, so even a later
	// remote release raises nothing.
	checker.Alert(context.Background(), bus)
	assert.Zero(t, bus.Len())
}

func TestAlertDevelopmentBuild(t *testing.T) {
	checker := newTestChecker(t, "2.0.0", []VersionInfo{{Version: "1.0.0"}}, http.StatusOK)
	bus := NewAlertBus()

	checker.Alert(context.Background(), bus)
	require.Equal(t, 1, bus.Len())
	assert.Contains(t, bus.List()[0].Title, "Development")
}
