package repository

import (
	"errors"

	"groundtruth/internal/cloudant"
)

// Document schema names in the store.
const (
	schemaClass = "class"
	schemaText  = "text"
)

// MaxQueryLimit bounds every list query. Result sets above the bound are
// silently truncated; there is no pagination.
const MaxQueryLimit = 10000

var (
	ErrNotFound         = errors.New("document not found")
	ErrWrongTenant      = errors.New("document belongs to another tenant")
	ErrUnsupportedPatch = errors.New("unsupported patch operation")
)

// Scrub maps a store document to its API representation. _id becomes id;
// _rev, schema, tenant and password never leave the server.
func Scrub(doc cloudant.Document) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		switch k {
		case "_id":
			out["id"] = v
		case "_rev", "schema", "tenant", "password":
			// store-internal, stripped
		default:
			out[k] = v
		}
	}
	return out
}

func scrubAll(docs []cloudant.Document) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		out = append(out, Scrub(doc))
	}
	return out
}

// checkOwnership verifies a fetched document has the expected schema and
// tenant before it is mutated or returned.
func checkOwnership(doc cloudant.Document, schema, tenant string) error {
	if s, _ := doc["schema"].(string); s != schema {
		return ErrNotFound
	}
	if t, _ := doc["tenant"].(string); t != tenant {
		return ErrWrongTenant
	}
	return nil
}

// stringSlice coerces a decoded JSON value (string, []string or []any)
// into a list of strings.
func stringSlice(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
