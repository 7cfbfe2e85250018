package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
)

// ContentClient moves a tenant's ground truth in bulk as CSV.
type ContentClient struct {
	c *Client
}

// Content returns the client for the content resource.
func (c *Client) Content() *ContentClient {
	return &ContentClient{c: c}
}

func (cc *ContentClient) endpoint() (string, error) {
	tenant := cc.c.session.Tenant()
	if tenant == "" {
		return "", ErrNoTenant
	}
	return cc.c.baseURL + "/api/" + url.PathEscape(tenant) + "/content", nil
}

// Export downloads the tenant's texts and classes as CSV bytes.
func (cc *ContentClient) Export(ctx context.Context) ([]byte, error) {
	endpoint, err := cc.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if token := cc.c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cc.c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		cc.c.fireUnauthorized()
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: payload}
	}

	return io.ReadAll(resp.Body)
}

// Import uploads a CSV file of texts and classes. The result reports how
// many of each the server created.
func (cc *ContentClient) Import(ctx context.Context, filename string, data []byte) (map[string]interface{}, error) {
	endpoint, err := cc.endpoint()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token := cc.c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := cc.c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		cc.c.fireUnauthorized()
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: payload}
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}
