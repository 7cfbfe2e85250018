package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// ErrNoTenant is returned when a resource call is made without an
// authenticated tenant to scope it.
var ErrNoTenant = errors.New("no tenant in session")

// Headers shared by the resource clients. Every mutation carries the
// wildcard precondition: the client does no optimistic-concurrency checks
// and leaves conflict detection to the server. Queries ask for a bounded
// range; result sets above the bound are silently truncated.
const (
	ifMatchWildcard = "*"
	queryRange      = "items=0-9999"
)

// PatchOp is one entry in an ordered PATCH list.
type PatchOp struct {
	Op    string      `json:"op"`
	Path  string      `json:"path"`
	Value interface{} `json:"value,omitempty"`
}

// ResourceClient wraps the CRUD calls of one tenant-scoped resource. The
// tenant is read from the session at call time, never cached, so a tenant
// change between calls is picked up.
type ResourceClient struct {
	c        *Client
	resource string
}

// Classes returns the client for the classes resource.
func (c *Client) Classes() *ResourceClient {
	return &ResourceClient{c: c, resource: "classes"}
}

// Texts returns the client for the texts resource.
func (c *Client) Texts() *TextsClient {
	return &TextsClient{ResourceClient{c: c, resource: "texts"}}
}

func (r *ResourceClient) collection() (string, error) {
	tenant := r.c.session.Tenant()
	if tenant == "" {
		return "", ErrNoTenant
	}
	return "/api/" + url.PathEscape(tenant) + "/" + r.resource, nil
}

func (r *ResourceClient) item(id string) (string, error) {
	collection, err := r.collection()
	if err != nil {
		return "", err
	}
	return collection + "/" + url.PathEscape(id), nil
}

// Query lists the resource, bounded to the first 10,000 items.
func (r *ResourceClient) Query(ctx context.Context) ([]map[string]interface{}, error) {
	path, err := r.collection()
	if err != nil {
		return nil, err
	}

	var items []map[string]interface{}
	headers := map[string]string{"Range": queryRange}
	if err := r.c.do(ctx, http.MethodGet, path, headers, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Post creates a resource item from the given payload.
func (r *ResourceClient) Post(ctx context.Context, payload interface{}) (map[string]interface{}, error) {
	path, err := r.collection()
	if err != nil {
		return nil, err
	}

	var created map[string]interface{}
	headers := map[string]string{"If-Match": ifMatchWildcard}
	if err := r.c.do(ctx, http.MethodPost, path, headers, payload, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces a resource item.
func (r *ResourceClient) Update(ctx context.Context, id string, payload interface{}) (map[string]interface{}, error) {
	path, err := r.item(id)
	if err != nil {
		return nil, err
	}

	var updated map[string]interface{}
	headers := map[string]string{"If-Match": ifMatchWildcard}
	if err := r.c.do(ctx, http.MethodPut, path, headers, payload, &updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove deletes one resource item.
func (r *ResourceClient) Remove(ctx context.Context, id string) error {
	path, err := r.item(id)
	if err != nil {
		return err
	}

	headers := map[string]string{"If-Match": ifMatchWildcard}
	return r.c.do(ctx, http.MethodDelete, path, headers, nil, nil)
}

// TextsClient extends the shared resource contract with the text-only
// operations: bulk removal and ordered patches on the classes array.
type TextsClient struct {
	ResourceClient
}

// RemoveAll deletes every text of the tenant.
func (t *TextsClient) RemoveAll(ctx context.Context) error {
	path, err := t.collection()
	if err != nil {
		return err
	}

	headers := map[string]string{"If-Match": ifMatchWildcard}
	return t.c.do(ctx, http.MethodDelete, path, headers, nil, nil)
}

// AddClasses attaches class ids to a text as a single ordered PATCH.
func (t *TextsClient) AddClasses(ctx context.Context, id string, classes []string) (map[string]interface{}, error) {
	ops := make([]PatchOp, 0, len(classes))
	for _, class := range classes {
		ops = append(ops, PatchOp{Op: "add", Path: "classes", Value: class})
	}
	return t.Patch(ctx, id, ops)
}

// RemoveClasses detaches class ids from a text as a single ordered PATCH.
func (t *TextsClient) RemoveClasses(ctx context.Context, id string, classes []string) (map[string]interface{}, error) {
	ops := make([]PatchOp, 0, len(classes))
	for _, class := range classes {
		ops = append(ops, PatchOp{Op: "remove", Path: "classes", Value: class})
	}
	return t.Patch(ctx, id, ops)
}

// UpdateValue replaces the text's value via a PATCH.
func (t *TextsClient) UpdateValue(ctx context.Context, id, value string) (map[string]interface{}, error) {
	return t.Patch(ctx, id, []PatchOp{{Op: "replace", Path: "value", Value: value}})
}

// Patch sends an ordered operation list against one text. The server
// applies the whole list atomically.
func (t *TextsClient) Patch(ctx context.Context, id string, ops []PatchOp) (map[string]interface{}, error) {
	if len(ops) == 0 {
		return nil, fmt.Errorf("patch requires at least one operation")
	}

	path, err := t.item(id)
	if err != nil {
		return nil, err
	}

	var patched map[string]interface{}
	headers := map[string]string{"If-Match": ifMatchWildcard}
	if err := t.c.do(ctx, http.MethodPatch, path, headers, ops, &patched); err != nil {
		return nil, err
	}
	return patched, nil
}
