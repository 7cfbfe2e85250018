package models

// Patch operation names accepted in a PATCH body on text documents.
const (
	PatchAdd     = "add"
	PatchRemove  = "remove"
	PatchReplace = "replace"
)

// PatchOp is a single entry in an ordered patch list. Operations are applied
// in list order against one document and persisted in a single write.
type PatchOp struct {
	Op    string      `json:"op" binding:"required"`
	Path  string      `json:"path" binding:"required"`
	Value interface{} `json:"value"`
}

// TrainingExample is one labeled text in a training request.
type TrainingExample struct {
	Text    string   `json:"text" binding:"required"`
	Classes []string `json:"classes"`
}

// TrainRequest is the payload accepted by the train endpoint. An empty
// training_data list is allowed; training then uses the stored ground truth.
type TrainRequest struct {
	Name     string            `json:"name" binding:"required"`
	Language string            `json:"language" binding:"required"`
	Data     []TrainingExample `json:"training_data"`
}
