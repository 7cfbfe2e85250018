package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"groundtruth/internal/cloudant"
	"groundtruth/internal/models"
)

// TextRepository manages text documents for a tenant.
type TextRepository struct {
	store  *cloudant.Client
	logger *zap.Logger
}

// NewTextRepository creates a new text repository.
func NewTextRepository(store *cloudant.Client, logger *zap.Logger) *TextRepository {
	return &TextRepository{store: store, logger: logger}
}

// Query returns all texts for the tenant, scrubbed for the API boundary.
// The result is bounded by MaxQueryLimit.
func (r *TextRepository) Query(ctx context.Context, tenant string) ([]map[string]interface{}, error) {
	docs, err := r.queryDocs(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return scrubAll(docs), nil
}

func (r *TextRepository) queryDocs(ctx context.Context, tenant string) ([]cloudant.Document, error) {
	selector := map[string]interface{}{
		"schema": schemaText,
		"tenant": tenant,
	}
	docs, err := r.store.Find(ctx, selector, MaxQueryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query texts: %w", err)
	}
	return docs, nil
}

// Create stores a new text with its class references.
func (r *TextRepository) Create(ctx context.Context, tenant, value string, classes []string) (map[string]interface{}, error) {
	if classes == nil {
		classes = []string{}
	}
	doc := cloudant.Document{
		"_id":     uuid.NewString(),
		"schema":  schemaText,
		"tenant":  tenant,
		"value":   value,
		"classes": classes,
	}
	id, _, err := r.store.CreateDocument(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create text: %w", err)
	}
	doc["_id"] = id
	return Scrub(doc), nil
}

// Patch applies an ordered list of operations to one text and persists the
// result in a single write, so the whole list lands atomically.
func (r *TextRepository) Patch(ctx context.Context, tenant, id string, ops []models.PatchOp) (map[string]interface{}, error) {
	doc, err := r.fetch(ctx, tenant, id)
	if err != nil {
		return nil, err
	}

	if err := applyPatch(doc, ops); err != nil {
		return nil, err
	}

	if _, err := r.store.UpdateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update text: %w", err)
	}
	return Scrub(doc), nil
}

// Delete removes one text.
func (r *TextRepository) Delete(ctx context.Context, tenant, id string) error {
	doc, err := r.fetch(ctx, tenant, id)
	if err != nil {
		return err
	}
	rev, _ := doc["_rev"].(string)
	if err := r.store.DeleteDocument(ctx, id, rev); err != nil {
		return fmt.Errorf("failed to delete text: %w", err)
	}
	return nil
}

// DeleteAll removes every text owned by the tenant and returns the count.
func (r *TextRepository) DeleteAll(ctx context.Context, tenant string) (int, error) {
	docs, err := r.queryDocs(ctx, tenant)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, doc := range docs {
		id, _ := doc["_id"].(string)
		rev, _ := doc["_rev"].(string)
		if err := r.store.DeleteDocument(ctx, id, rev); err != nil {
			return deleted, fmt.Errorf("failed to delete text %s: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

// applyPatch mutates a text document according to an ordered patch list.
// Supported operations: add/remove on the classes array, replace on the
// value field (directly, or via a metadata object carrying one).
func applyPatch(doc cloudant.Document, ops []models.PatchOp) error {
	for _, op := range ops {
		switch {
		case op.Path == "classes" && op.Op == models.PatchAdd:
			classes := stringSlice(doc["classes"])
			for _, added := range stringSlice(op.Value) {
				if !containsString(classes, added) {
					classes = append(classes, added)
				}
			}
			doc["classes"] = classes

		case op.Path == "classes" && op.Op == models.PatchRemove:
			classes := stringSlice(doc["classes"])
			kept := make([]string, 0, len(classes))
			for _, existing := range classes {
				if !containsString(stringSlice(op.Value), existing) {
					kept = append(kept, existing)
				}
			}
			doc["classes"] = kept

		case op.Path == "value" && op.Op == models.PatchReplace:
			value, ok := op.Value.(string)
			if !ok {
				return fmt.Errorf("%w: replace value must be a string", ErrUnsupportedPatch)
			}
			doc["value"] = value

		case op.Path == "metadata" && op.Op == models.PatchReplace:
			meta, ok := op.Value.(map[string]interface{})
			if !ok {
				return fmt.Errorf("%w: replace metadata must be an object", ErrUnsupportedPatch)
			}
			if value, ok := meta["value"].(string); ok {
				doc["value"] = value
			}

		default:
			return fmt.Errorf("%w: %s %s", ErrUnsupportedPatch, op.Op, op.Path)
		}
	}
	return nil
}

func containsString(list []string, target string) bool {
	for _, item := range list {
		if item == target {
			return true
		}
	}
	return false
}

func (r *TextRepository) fetch(ctx context.Context, tenant, id string) (cloudant.Document, error) {
	doc, err := r.store.GetDocument(ctx, id)
	if err != nil {
		var statusErr *cloudant.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch text: %w", err)
	}
	if err := checkOwnership(doc, schemaText, tenant); err != nil {
		return nil, err
	}
	return doc, nil
}
