package nlc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"groundtruth/internal/config"
)

// Classifier is the service's view of one training job and its model.
type Classifier struct {
	ClassifierID      string `json:"classifier_id"`
	Name              string `json:"name"`
	Language          string `json:"language"`
	URL               string `json:"url"`
	Status            string `json:"status"`
	StatusDescription string `json:"status_description"`
	Created           string `json:"created"`
}

// Training status values reported by the service.
const (
	StatusTraining    = "Training"
	StatusAvailable   = "Available"
	StatusFailed      = "Failed"
	StatusUnavailable = "Unavailable"
)

// ClassConfidence is one class score in a classification result.
type ClassConfidence struct {
	ClassName  string  `json:"class_name"`
	Confidence float64 `json:"confidence"`
}

// ClassifyResult is the outcome of classifying one text.
type ClassifyResult struct {
	ClassifierID string            `json:"classifier_id"`
	Text         string            `json:"text"`
	TopClass     string            `json:"top_class"`
	Classes      []ClassConfidence `json:"classes"`
}

// TrainingMetadata is the metadata part of a training upload.
type TrainingMetadata struct {
	Language string `json:"language"`
	Name     string `json:"name"`
}

// Client is a client for the Natural Language Classifier service API.
type Client struct {
	baseURL    string
	version    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new classifier service client from resolved
// credentials.
func NewClient(creds config.ServiceCredentials, logger *zap.Logger) *Client {
	return &Client{
		baseURL:  creds.URL,
		version:  creds.Version,
		username: creds.Username,
		password: creds.Password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// List fetches all classifiers owned by the bound credentials.
func (c *Client) List(ctx context.Context) ([]Classifier, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(""), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Classifiers []Classifier `json:"classifiers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Classifiers, nil
}

// Status fetches the training status of one classifier.
func (c *Client) Status(ctx context.Context, id string) (*Classifier, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/"+id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Classifier
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Classify runs one text through a trained classifier.
func (c *Client) Classify(ctx context.Context, id, text string) (*ClassifyResult, error) {
	jsonData, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/"+id+"/classify"), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result ClassifyResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Train uploads training metadata plus CSV training data as a multipart
// request and returns the new classifier in Training state.
func (c *Client) Train(ctx context.Context, meta TrainingMetadata, trainingCSV []byte) (*Classifier, error) {
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal training metadata: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaPart, err := writer.CreateFormField("training_metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to build training upload: %w", err)
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return nil, fmt.Errorf("failed to build training upload: %w", err)
	}

	dataPart, err := writer.CreateFormFile("training_data", "training_data.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to build training upload: %w", err)
	}
	if _, err := dataPart.Write(trainingCSV); err != nil {
		return nil, fmt.Errorf("failed to build training upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build training upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(""), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result Classifier
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// Remove deletes a classifier and its trained model.
func (c *Client) Remove(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint("/"+id), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// CheckCredentials validates a username/password pair by listing classifiers
// with it over Basic auth. A 200 means valid, a 401/403 means invalid; any
// other outcome is a transport or service error.
func (c *Client) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(""), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(username, password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("classifier service returned status %d: %s", resp.StatusCode, string(body))
	}
}

func (c *Client) endpoint(suffix string) string {
	return c.baseURL + "/" + c.version + "/classifiers" + suffix
}
