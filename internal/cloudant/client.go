package cloudant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"groundtruth/internal/config"
)

// Document is a raw store document. Store-internal fields (_id, _rev,
// schema, tenant) live here until the repository scrubs them at the API
// boundary.
type Document = map[string]interface{}

// StatusError reports a non-2xx store response. Conflict (409) and
// not-found (404) statuses pass through to handlers unchanged.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("document store returned status %d: %s", e.StatusCode, e.Body)
}

// Client is a client for a Cloudant-compatible document store.
type Client struct {
	baseURL    string
	database   string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new document store client from resolved credentials.
func NewClient(creds config.ServiceCredentials, database string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  creds.URL,
		database: database,
		username: creds.Username,
		password: creds.Password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// GetDocument fetches a document by id.
func (c *Client) GetDocument(ctx context.Context, id string) (Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, c.docPath(id), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// CreateDocument stores a new document and returns its id and revision.
func (c *Client) CreateDocument(ctx context.Context, doc Document) (string, string, error) {
	var result struct {
		ID  string `json:"id"`
		Rev string `json:"rev"`
	}
	if err := c.do(ctx, http.MethodPost, c.dbPath(), doc, &result); err != nil {
		return "", "", err
	}
	return result.ID, result.Rev, nil
}

// UpdateDocument rewrites an existing document. The document must carry its
// _id and current _rev; the store rejects stale revisions with a 409.
func (c *Client) UpdateDocument(ctx context.Context, doc Document) (string, error) {
	id, _ := doc["_id"].(string)
	if id == "" {
		return "", fmt.Errorf("document has no _id")
	}
	var result struct {
		Rev string `json:"rev"`
	}
	if err := c.do(ctx, http.MethodPut, c.docPath(id), doc, &result); err != nil {
		return "", err
	}
	return result.Rev, nil
}

// DeleteDocument removes a document at the given revision.
func (c *Client) DeleteDocument(ctx context.Context, id, rev string) error {
	path := c.docPath(id) + "?rev=" + url.QueryEscape(rev)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Find runs a selector query against the store. The limit is applied
// verbatim; callers own the bound.
func (c *Client) Find(ctx context.Context, selector map[string]interface{}, limit int) ([]Document, error) {
	query := map[string]interface{}{
		"selector": selector,
		"limit":    limit,
	}
	var result struct {
		Docs []Document `json:"docs"`
	}
	if err := c.do(ctx, http.MethodPost, c.dbPath()+"/_find", query, &result); err != nil {
		return nil, err
	}
	return result.Docs, nil
}

func (c *Client) dbPath() string {
	return "/" + url.PathEscape(c.database)
}

func (c *Client) docPath(id string) string {
	return c.dbPath() + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to make request to document store", zap.Error(err))
		return fmt.Errorf("failed to make request to document store: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode document store response: %w", err)
	}
	return nil
}
