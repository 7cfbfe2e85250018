package client

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Classifier is the client-side projection of one training job.
type Classifier struct {
	ClassifierID      string `json:"classifier_id"`
	Name              string `json:"name"`
	Language          string `json:"language"`
	Status            string `json:"status"`
	StatusDescription string `json:"status_description"`
	Created           string `json:"created"`
}

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

// TrainingExample is one labeled text in a training request.
type TrainingExample struct {
	Text    string   `json:"text"`
	Classes []string `json:"classes"`
}

// ClassifiersClient wraps the classifier endpoints. Calls are stateless
// request/response; nothing is cached locally.
type ClassifiersClient struct {
	c *Client
}

// Classifiers returns the client for the classifiers resource.
func (c *Client) Classifiers() *ClassifiersClient {
	return &ClassifiersClient{c: c}
}

func (cc *ClassifiersClient) path(suffix string) (string, error) {
	tenant := cc.c.session.Tenant()
	if tenant == "" {
		return "", ErrNoTenant
	}
	return "/api/" + url.PathEscape(tenant) + "/classifiers" + suffix, nil
}

// List fetches all classifiers.
func (cc *ClassifiersClient) List(ctx context.Context) ([]Classifier, error) {
	path, err := cc.path("")
	if err != nil {
		return nil, err
	}
	var classifiers []Classifier
	if err := cc.c.do(ctx, http.MethodGet, path, nil, nil, &classifiers); err != nil {
		return nil, err
	}
	return classifiers, nil
}

// Status fetches one classifier's training status.
func (cc *ClassifiersClient) Status(ctx context.Context, id string) (*Classifier, error) {
	path, err := cc.path("/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var classifier Classifier
	if err := cc.c.do(ctx, http.MethodGet, path, nil, nil, &classifier); err != nil {
		return nil, err
	}
	return &classifier, nil
}

// Classify runs one text through a trained classifier.
func (cc *ClassifiersClient) Classify(ctx context.Context, id, text string) (*ClassifyResult, error) {
	path, err := cc.path("/" + url.PathEscape(id) + "/classify")
	if err != nil {
		return nil, err
	}
	var result ClassifyResult
	body := map[string]string{"text": text}
	if err := cc.c.do(ctx, http.MethodPost, path, nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Remove deletes a classifier.
func (cc *ClassifiersClient) Remove(ctx context.Context, id string) error {
	path, err := cc.path("/" + url.PathEscape(id))
	if err != nil {
		return err
	}
	return cc.c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Train starts a training job from the given examples; with none, the
// server trains from the tenant's stored ground truth.
func (cc *ClassifiersClient) Train(ctx context.Context, data []TrainingExample, language, name string) (*Classifier, error) {
	path, err := cc.path("")
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"name":          name,
		"language":      language,
		"training_data": data,
	}
	var classifier Classifier
	if err := cc.c.do(ctx, http.MethodPost, path, nil, body, &classifier); err != nil {
		return nil, err
	}
	return &classifier, nil
}

// PollStatus re-checks a classifier's training status until stopped: one
// immediate check, then one per interval. A tick with no authenticated
// session is skipped, not cancelled; the poll keeps ticking and the owner
// must call the returned stop function (or cancel ctx) to end it. Tick
// errors are logged and swallowed, never surfaced.
func (cc *ClassifiersClient) PollStatus(ctx context.Context, id string, onUpdate func(*Classifier), interval time.Duration) (stop func()) {
	done := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() { close(done) })
	}

	tick := func() {
		if !cc.c.session.IsAuthenticated() {
			return
		}
		classifier, err := cc.Status(ctx, id)
		if err != nil {
			cc.c.logger.Error("Classifier status poll failed",
				zap.String("classifier_id", id), zap.Error(err))
			return
		}
		onUpdate(classifier)
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		tick()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick()
			}
		}
	}()

	return stop
}
