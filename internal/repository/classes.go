package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"groundtruth/internal/cloudant"
)

// ClassRepository manages class documents for a tenant.
type ClassRepository struct {
	store  *cloudant.Client
	logger *zap.Logger
}

// NewClassRepository creates a new class repository.
func NewClassRepository(store *cloudant.Client, logger *zap.Logger) *ClassRepository {
	return &ClassRepository{store: store, logger: logger}
}

// Query returns all classes for the tenant, scrubbed for the API boundary.
// The result is bounded by MaxQueryLimit.
func (r *ClassRepository) Query(ctx context.Context, tenant string) ([]map[string]interface{}, error) {
	docs, err := r.queryDocs(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return scrubAll(docs), nil
}

func (r *ClassRepository) queryDocs(ctx context.Context, tenant string) ([]cloudant.Document, error) {
	selector := map[string]interface{}{
		"schema": schemaClass,
		"tenant": tenant,
	}
	docs, err := r.store.Find(ctx, selector, MaxQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query classes: %w", err)
	}
	return docs, nil
}

// Create stores a new class and returns its scrubbed representation.
func (r *ClassRepository) Create(ctx context.Context, tenant, name string) (map[string]interface{}, error) {
	doc := cloudant.Document{
		"_id":    uuid.NewString(),
		"schema": schemaClass,
		"tenant": tenant,
		"name":   name,
	}
	id, _, err := r.store.CreateDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create class: %w", err)
	}
	doc["_id"] = id
	return Scrub(doc), nil
}

// Update renames an existing class.
func (r *ClassRepository) Update(ctx context.Context, tenant, id, name string) (map[string]interface{}, error) {
	doc, err := r.fetch(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	doc["name"] = name
	if _, err := r.store.UpdateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update class: %w", err)
	}
	return Scrub(doc), nil
}

// Delete removes a class and strips its id from every text that references
// it, so texts never point at a class that no longer exists.
func (r *ClassRepository) Delete(ctx context.Context, tenant, id string) error {
	doc, err := r.fetch(ctx, tenant, id)
	if err != nil {
		return err
	}

	rev, _ := doc["_rev"].(string)
	if err := r.store.DeleteDocument(ctx, id, rev); err != nil {
		return fmt.Errorf("failed to delete class: %w", err)
	}

	if err := r.unlinkFromTexts(ctx, tenant, id); err != nil {
		// The class itself is gone; report the partial cleanup.
		return fmt.Errorf("class deleted but reference cleanup failed: %w", err)
	}
	return nil
}

func (r *ClassRepository) unlinkFromTexts(ctx context.Context, tenant, classID string) error {
	selector := map[string]interface{}{
		"schema":  schemaText,
		"tenant":  tenant,
		"classes": map[string]interface{}{"$elemMatch": map[string]interface{}{"$eq": classID}},
	}
	texts, err := r.store.Find(ctx, selector, MaxQueryLimit)
	if err != nil {
		return fmt.Errorf("failed to find referencing texts: %w", err)
	}

	for _, text := range texts {
		kept := make([]string, 0)
		for _, ref := range stringSlice(text["classes"]) {
			if ref != classID {
				kept = append(kept, ref)
			}
		}
		text["classes"] = kept
		if _, err := r.store.UpdateDocument(ctx, text); err != nil {
			return fmt.Errorf("failed to unlink class from text: %w", err)
		}
	}
	return nil
}

func (r *ClassRepository) fetch(ctx context.Context, tenant, id string) (cloudant.Document, error) {
	doc, err := r.store.GetDocument(ctx, id)
	if err != nil {
		var statusErr *cloudant.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch class: %w", err)
	}
	if err := checkOwnership(doc, schemaClass, tenant); err != nil {
		return nil, err
	}
	return doc, nil
}
