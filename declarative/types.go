// Package declarative loads feature-view definitions from YAML files and
// compiles them into the same artifacts the builder API produces. The
// file format covers stored features only; derived features stay in code.
package declarative

// SupportedAPIVersion is the only apiVersion the loader accepts.
const SupportedAPIVersion = "plumage/v1"

// KindFeatureView is the document kind for feature-view definitions.
const KindFeatureView = "FeatureView"

// FeatureViewDocument is one YAML feature-view definition.
type FeatureViewDocument struct {
	APIVersion     string              `yaml:"apiVersion"`
	Kind           string              `yaml:"kind"`
	Metadata       Metadata            `yaml:"metadata"`
	Source         SourceSpec          `yaml:"source"`
	Entities       []ColumnSpec        `yaml:"entities"`
	Features       []ColumnSpec        `yaml:"features"`
	EventTimestamp *EventTimestampSpec `yaml:"eventTimestamp,omitempty"`
}

// Metadata names the view.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// ColumnSpec describes one entity or stored feature column.
type ColumnSpec struct {
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type"`
	Description    string   `yaml:"description,omitempty"`
	Required       bool     `yaml:"required,omitempty"`
	LowerBound     *float64 `yaml:"lowerBound,omitempty"`
	UpperBound     *float64 `yaml:"upperBound,omitempty"`
	MinLength      *int     `yaml:"minLength,omitempty"`
	MaxLength      *int     `yaml:"maxLength,omitempty"`
	AcceptedValues []string `yaml:"acceptedValues,omitempty"`
}

// EventTimestampSpec describes the event-time column of a view.
type EventTimestampSpec struct {
	Name        string  `yaml:"name"`
	TTLSeconds  float64 `yaml:"ttlSeconds,omitempty"`
	Description string  `yaml:"description,omitempty"`
}

// SourceSpec describes where the view's rows live. Kind selects the
// fields that apply: csv uses path and separator, psql uses envVar, table
// and schema.
type SourceSpec struct {
	Kind      string            `yaml:"kind"`
	Path      string            `yaml:"path,omitempty"`
	Separator string            `yaml:"separator,omitempty"`
	EnvVar    string            `yaml:"envVar,omitempty"`
	Table     string            `yaml:"table,omitempty"`
	Schema    string            `yaml:"schema,omitempty"`
	Mapping   map[string]string `yaml:"mapping,omitempty"`
}
