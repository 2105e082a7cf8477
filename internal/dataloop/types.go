package dataloop

// Dataset is a Dataloop dataset handle.
type Dataset struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is a Dataloop item as returned by the platform.
type Item struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	DatasetID string                 `json:"datasetId"`
	Filename  string                 `json:"filename"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Annotation is one annotation attached to an item.
type Annotation struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Label       string                 `json:"label"`
	Attributes  map[string]interface{} `json:"attributes,omitempty"`
	Coordinates string                 `json:"coordinates"`
	Metadata    AnnotationMetadata     `json:"metadata"`
}

// AnnotationMetadata splits platform-managed and user-managed metadata.
type AnnotationMetadata struct {
	System SystemMetadata `json:"system"`
	User   UserMetadata   `json:"user"`
}

// SystemMetadata is the platform-managed part of annotation metadata.
type SystemMetadata struct {
	PromptID string `json:"promptId"`
}

// UserMetadata is the user-managed part of annotation metadata.
type UserMetadata struct {
	Model *ModelInfo `json:"model,omitempty"`
}

// ModelInfo attributes a generated response to a model.
type ModelInfo struct {
	ModelID string `json:"model_id"`
	Name    string `json:"name"`
}

// IsBest reports whether the annotation carries the isBest attribute.
// Annotations without attributes are never best.
func (a *Annotation) IsBest() bool {
	if a.Attributes == nil {
		return false
	}
	best, _ := a.Attributes["isBest"].(bool)
	return best
}

// Attribution returns the model id and display name to attribute the
// annotation to. Annotations without model metadata are attributed to
// "human" with an empty model id.
func (a *Annotation) Attribution() (modelID, name string) {
	if a.Metadata.User.Model == nil {
		return "", "human"
	}
	name = a.Metadata.User.Model.Name
	if name == "" {
		name = "human"
	}
	return a.Metadata.User.Model.ModelID, name
}
