package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ContentRepository imports and exports a tenant's ground truth as CSV.
// Each record is a text value followed by the names of its classes.
type ContentRepository struct {
	classes *ClassRepository
	texts   *TextRepository
	logger  *zap.Logger
}

// ImportResult reports what an import created.
type ImportResult struct {
	Texts   int `json:"texts"`
	Classes int `json:"classes"`
}

// NewContentRepository creates a new content repository.
func NewContentRepository(classes *ClassRepository, texts *TextRepository, logger *zap.Logger) *ContentRepository {
	return &ContentRepository{classes: classes, texts: texts, logger: logger}
}

// Export writes the tenant's texts and class names as CSV records.
func (r *ContentRepository) Export(ctx context.Context, tenant string, w io.Writer) error {
	classDocs, err := r.classes.queryDocs(ctx, tenant)
	if err != nil {
		return err
	}
	classNames := make(map[string]string, len(classDocs))
	for _, doc := range classDocs {
		id, _ := doc["_id"].(string)
		name, _ := doc["name"].(string)
		classNames[id] = name
	}

	textDocs, err := r.texts.queryDocs(ctx, tenant)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	for _, doc := range textDocs {
		value, _ := doc["value"].(string)
		record := []string{value}
		for _, classID := range stringSlice(doc["classes"]) {
			if name, ok := classNames[classID]; ok {
				record = append(record, name)
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Import reads CSV records and creates the texts and any classes that do
// not exist yet. Texts whose value is already present are skipped, so
// re-importing the same file is harmless.
func (r *ContentRepository) Import(ctx context.Context, tenant string, reader io.Reader) (*ImportResult, error) {
	classDocs, err := r.classes.queryDocs(ctx, tenant)
	if err != nil {
		return nil, err
	}
	classIDs := make(map[string]string, len(classDocs))
	for _, doc := range classDocs {
		name, _ := doc["name"].(string)
		id, _ := doc["_id"].(string)
		classIDs[name] = id
	}

	textDocs, err := r.texts.queryDocs(ctx, tenant)
	if err != nil {
		return nil, err
	}
	existingTexts := make(map[string]bool, len(textDocs))
	for _, doc := range textDocs {
		value, _ := doc["value"].(string)
		existingTexts[value] = true
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1 // rows carry a variable number of classes

	result := &ImportResult{}
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}

		value := record[0]
		refs := make([]string, 0, len(record)-1)
		for _, name := range record[1:] {
			if name == "" {
				continue
			}
			id, ok := classIDs[name]
			if !ok {
				created, err := r.classes.Create(ctx, tenant, name)
				if err != nil {
					return nil, err
				}
				id, _ = created["id"].(string)
				classIDs[name] = id
				result.Classes++
			}
			refs = append(refs, id)
		}

		if existingTexts[value] {
			continue
		}
		if _, err := r.texts.Create(ctx, tenant, value, refs); err != nil {
			return nil, err
		}
		existingTexts[value] = true
		result.Texts++
	}

	r.logger.Info("Content import finished",
		zap.String("tenant", tenant),
		zap.Int("texts", result.Texts),
		zap.Int("classes", result.Classes))
	return result, nil
}

// TrainingCSV renders the tenant's ground truth in the classifier service's
// training format: one record per labeled text, value first, class names
// after. Texts without classes are skipped; the service rejects unlabeled
// rows.
func (r *ContentRepository) TrainingCSV(ctx context.Context, tenant string) ([]byte, error) {
	classDocs, err := r.classes.queryDocs(ctx, tenant)
	if err != nil {
		return nil, err
	}
	classNames := make(map[string]string, len(classDocs))
	for _, doc := range classDocs {
		id, _ := doc["_id"].(string)
		name, _ := doc["name"].(string)
		classNames[id] = name
	}

	textDocs, err := r.texts.queryDocs(ctx, tenant)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	for _, doc := range textDocs {
		value, _ := doc["value"].(string)
		record := []string{value}
		for _, classID := range stringSlice(doc["classes"]) {
			if name, ok := classNames[classID]; ok {
				record = append(record, name)
			}
		}
		if len(record) < 2 {
			continue
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
