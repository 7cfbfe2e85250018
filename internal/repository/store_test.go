package repository

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"groundtruth/internal/cloudant"
	"groundtruth/internal/config"
)

// fakeStore is an in-memory stand-in for the document store, speaking just
// enough of its HTTP surface for the repositories: document CRUD plus
// _find with equality and $elemMatch selectors.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]cloudant.Document
	seq  int
}

func newTestStore(t *testing.T) (*cloudant.Client, *fakeStore) {
	t.Helper()
	fake := &fakeStore{docs: make(map[string]cloudant.Document)}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	creds := config.ServiceCredentials{URL: srv.URL, Username: "u", Password: "p", Version: "v1"}
	return cloudant.NewClient(creds, "db", zap.NewNop()), fake
}

func (f *fakeStore) put(doc cloudant.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := doc["_id"].(string)
	f.seq++
	doc["_rev"] = fmt.Sprintf("%d-test", f.seq)
	f.docs[id] = doc
}

func (f *fakeStore) get(id string) (cloudant.Document, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	return doc, ok
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/db")

	switch {
	case r.Method == http.MethodPost && path == "/_find":
		f.handleFind(w, r)
	case r.Method == http.MethodPost && path == "":
		f.handleCreate(w, r)
	case r.Method == http.MethodGet:
		f.handleGet(w, strings.TrimPrefix(path, "/"))
	case r.Method == http.MethodPut:
		f.handleUpdate(w, r, strings.TrimPrefix(path, "/"))
	case r.Method == http.MethodDelete:
		f.handleDelete(w, strings.TrimPrefix(path, "/"))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeStore) handleCreate(w http.ResponseWriter, r *http.Request) {
	var doc cloudant.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id, _ := doc["_id"].(string)
	if id == "" {
		f.mu.Lock()
		f.seq++
		id = fmt.Sprintf("generated-%d", f.seq)
		f.mu.Unlock()
		doc["_id"] = id
	}
	f.put(doc)
	doc, _ = f.get(id)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": id, "rev": doc["_rev"]})
}

func (f *fakeStore) handleGet(w http.ResponseWriter, id string) {
	doc, ok := f.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not_found"})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (f *fakeStore) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var doc cloudant.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if _, ok := f.get(id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not_found"})
		return
	}
	doc["_id"] = id
	f.put(doc)
	doc, _ = f.get(id)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"ok": true, "id": id, "rev": doc["_rev"]})
}

func (f *fakeStore) handleDelete(w http.ResponseWriter, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "not_found"})
		return
	}
	delete(f.docs, id)
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (f *fakeStore) handleFind(w http.ResponseWriter, r *http.Request) {
	var query struct {
		Selector map[string]interface{} `json:"selector"`
		Limit    int                    `json:"limit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	matches := make([]cloudant.Document, 0)
	for _, doc := range f.docs {
		if matchesSelector(doc, query.Selector) {
			matches = append(matches, doc)
		}
		if query.Limit > 0 && len(matches) >= query.Limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"docs": matches})
}

func matchesSelector(doc cloudant.Document, selector map[string]interface{}) bool {
	for field, condition := range selector {
		if elem, ok := condition.(map[string]interface{}); ok {
			// only $elemMatch/$eq is used by the repositories
			eq := elem["$elemMatch"].(map[string]interface{})["$eq"]
			found := false
			for _, item := range stringSlice(doc[field]) {
				if item == eq {
					found = true
					break
				}
			}
			if !found {
				return false
			}
			continue
		}
		if doc[field] != condition {
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
