package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// VersionStatus classifies the local build against the latest release.
type VersionStatus string

const (
	VersionOld         VersionStatus = "old"
	VersionCurrent     VersionStatus = "current"
	VersionDevelopment VersionStatus = "development"
)

// VersionInfo is one entry of the remote version feed.
type VersionInfo struct {
	Version string `json:"version"`
	Link    string `json:"link"`
}

// VersionChecker compares the local build version against a remote feed of
// releases and can raise a one-time alert when they differ.
type VersionChecker struct {
	feedURL    string
	local      string
	httpClient *http.Client
	logger     *zap.Logger

	mu       sync.Mutex
	informed bool
}

// NewVersionChecker creates a checker for the given feed and local version.
func NewVersionChecker(feedURL, local string, logger *zap.Logger) *VersionChecker {
	return &VersionChecker{
		feedURL: feedURL,
		local:   local,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Current fetches the remote feed and returns its first entry, or a zero
// value when the feed is empty.
func (v *VersionChecker) Current(ctx context.Context) (VersionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.feedURL, nil)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return VersionInfo{}, fmt.Errorf("failed to fetch version feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return VersionInfo{}, fmt.Errorf("version feed returned status %d: %s", resp.StatusCode, string(payload))
	}

	var entries []VersionInfo
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return VersionInfo{}, fmt.Errorf("failed to decode version feed: %w", err)
	}
	if len(entries) == 0 {
		return VersionInfo{}, nil
	}
	return entries[0], nil
}

// Status compares the remote version against the local one. The comparison
// is plain string ordering, deliberately not semver-aware: multi-digit
// components compare lexically ("0.0.10" sorts below "0.0.9").
func (v *VersionChecker) Status(ctx context.Context) (VersionStatus, error) {
	remote, err := v.Current(ctx)
	if err != nil {
		return "", err
	}

	switch {
	case remote.Version > v.local:
		return VersionOld, nil
	case remote.Version < v.local:
		return VersionDevelopment, nil
	default:
		return VersionCurrent, nil
	}
}

// Alert checks the version once per process lifetime and raises a single
// dismissable info alert when the build is stale or a pre-release. Repeat
// calls after the first completed check do nothing; the informed flag is
// never reset. Current builds raise no alert.
func (v *VersionChecker) Alert(ctx context.Context, bus *AlertBus) {
	v.mu.Lock()
	if v.informed {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	remote, err := v.Current(ctx)
	if err != nil {
		v.logger.Error("Version check failed", zap.Error(err))
		return
	}

	var status VersionStatus
	switch {
	case remote.Version > v.local:
		status = VersionOld
	case remote.Version < v.local:
		status = VersionDevelopment
	default:
		status = VersionCurrent
	}

	v.mu.Lock()
	if v.informed {
		v.mu.Unlock()
		return
	}
	v.informed = true
	v.mu.Unlock()

	switch status {
	case VersionOld:
		bus.Add(Alert{
			Level:       LevelInfo,
			Title:       "Update available",
			Text:        fmt.Sprintf("Version %s is available; you are running %s.", remote.Version, v.local),
			Dismissable: true,
			Link:        remote.Link,
		})
	case VersionDevelopment:
		bus.Add(Alert{
			Level:       LevelInfo,
			Title:       "Development build",
			Text:        fmt.Sprintf("You are running %s, ahead of the released %s.", v.local, remote.Version),
			Dismissable: true,
		})
	}
}
