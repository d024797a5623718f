package domain

// InferenceView is the request shape a model serves predictions from:
// which entities identify a row, which stored and derived features feed the
// model, and the optional event timestamp.
type InferenceView struct {
	Entities        []Feature
	Features        []Feature
	DerivedFeatures []DerivedFeature
	EventTimestamp  *EventTimestamp
}

// Model names a set of input features and the view used at inference time.
// The serving layer introspects this to derive its request schema; the
// planning core only carries the shape.
type Model struct {
	Name          string
	Features      []FeatureReference
	InferenceView InferenceView
}

// RequiredFeatureNames returns entity and feature names a caller must
// provide or receive, entities first.
func (m Model) RequiredFeatureNames() []string {
	var names []string
	for _, entity := range m.InferenceView.Entities {
		names = append(names, entity.Name)
	}
	for _, feature := range m.InferenceView.Features {
		names = append(names, feature.Name)
	}
	return names
}
