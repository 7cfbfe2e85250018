package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundtruth/internal/cloudant"
	"groundtruth/internal/models"
)

func TestApplyPatch(t *testing.T) {
	tests := []struct {
		name        string
		doc         cloudant.Document
		ops         []models.PatchOp
		wantClasses []string
		wantValue   string
		wantErr     bool
	}{
		{
			name:        "add class",
			doc:         cloudant.Document{"value": "v", "classes": []interface{}{"a"}},
			ops:         []models.PatchOp{{Op: "add", Path: "classes", Value: "b"}},
			wantClasses: []string{"a", "b"},
			wantValue:   "v",
		},
		{
			name:        "add existing class is idempotent",
			doc:         cloudant.Document{"value": "v", "classes": []interface{}{"a"}},
			ops:         []models.PatchOp{{Op: "add", Path: "classes", Value: "a"}},
			wantClasses: []string{"a"},
			wantValue:   "v",
		},
		{
			name:        "remove class",
			doc:         cloudant.Document{"value": "v", "classes": []interface{}{"a", "b"}},
			ops:         []models.PatchOp{{Op: "remove", Path: "classes", Value: "a"}},
			wantClasses: []string{"b"},
			wantValue:   "v",
		},
		{
			name: "operations apply in order",
			doc:  cloudant.Document{"value": "v", "classes": []interface{}{}},
			ops: []models.PatchOp{
				{Op: "add", Path: "classes", Value: "a"},
				{Op: "add", Path: "classes", Value: "b"},
				{Op: "remove", Path: "classes", Value: "a"},
			},
			wantClasses: []string{"b"},
			wantValue:   "v",
		},
		{
			name:        "replace value",
			doc:         cloudant.Document{"value": "old", "classes": []interface{}{}},
			ops:         []models.PatchOp{{Op: "replace", Path: "value", Value: "new"}},
			wantClasses: []string{},
			wantValue:   "new",
		},
		{
			name:        "replace via metadata object",
			doc:         cloudant.Document{"value": "old", "classes": []interface{}{}},
			ops:         []models.PatchOp{{Op: "replace", Path: "metadata", Value: map[string]interface{}{"value": "new"}}},
			wantClasses: []string{},
			wantValue:   "new",
		},
		{
			name:    "unsupported operation",
			doc:     cloudant.Document{"value": "v"},
			ops:     []models.PatchOp{{Op: "move", Path: "classes", Value: "a"}},
			wantErr: true,
		},
		{
			name:    "replace value with non-string",
			doc:     cloudant.Document{"value": "v"},
			ops:     []models.PatchOp{{Op: "replace", Path: "value", Value: 7}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := applyPatch(tt.doc, tt.ops)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedPatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantClasses, stringSlice(tt.doc["classes"]))
			assert.Equal(t, tt.wantValue, tt.doc["value"])
		})
	}
}
