package declarative

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"plumage/compiler"
	"plumage/retrieval"
	"plumage/sources"
)

// FeatureView is one loaded and compiled declarative view.
type FeatureView struct {
	Document FeatureViewDocument
	Compiled *compiler.CompiledView
	Source   retrieval.BatchSource
}

// Request returns the retrieval request covering the whole view.
func (v *FeatureView) Request() retrieval.Request {
	return retrieval.RequestFromView(v.Compiled)
}

// LoadOptions configures YAML loading behavior.
type LoadOptions struct {
	AllowUnknownFields bool
}

// LoadFile reads, validates and compiles one YAML definition. Unknown
// fields are rejected.
func LoadFile(path string) (*FeatureView, error) {
	return LoadFileWithOptions(path, LoadOptions{})
}

// LoadFileWithOptions reads one YAML definition using caller-provided
// loading options.
func LoadFileWithOptions(path string, opts LoadOptions) (*FeatureView, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc FeatureViewDocument
	if opts.AllowUnknownFields {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if doc.APIVersion != SupportedAPIVersion {
		return nil, fmt.Errorf("%s: unsupported apiVersion %q (expected %q)", path, doc.APIVersion, SupportedAPIVersion)
	}
	if doc.Kind != KindFeatureView {
		return nil, fmt.Errorf("%s: unsupported kind %q (expected %q)", path, doc.Kind, KindFeatureView)
	}
	if doc.Metadata.Name == "" {
		return nil, fmt.Errorf("%s: metadata.name is required", path)
	}
	if len(doc.Entities) == 0 {
		return nil, fmt.Errorf("%s: at least one entity is required", path)
	}

	view, err := buildView(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	compiled, err := view.Compile()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	source, err := buildSource(doc.Source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &FeatureView{Document: doc, Compiled: compiled, Source: source}, nil
}

// LoadDirectory loads every .yaml and .yml file directly inside dir,
// sorted by file name so the result is deterministic.
func LoadDirectory(dir string) ([]*FeatureView, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("definitions directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	views := make([]*FeatureView, 0, len(paths))
	names := make(map[string]string, len(paths))
	for _, path := range paths {
		view, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		name := view.Document.Metadata.Name
		if previous, ok := names[name]; ok {
			return nil, fmt.Errorf("%s: view %q already defined in %s", path, name, previous)
		}
		names[name] = path
		views = append(views, view)
	}
	return views, nil
}

func buildView(doc FeatureViewDocument) (*compiler.View, error) {
	view := compiler.NewView(doc.Metadata.Name)

	for _, spec := range doc.Entities {
		node, err := nodeForSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("entity %q: %w", spec.Name, err)
		}
		view.Entity(spec.Name, compiler.NewEntity(node))
	}
	for _, spec := range doc.Features {
		node, err := nodeForSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", spec.Name, err)
		}
		view.Feature(spec.Name, node)
	}
	if ts := doc.EventTimestamp; ts != nil {
		if ts.Name == "" {
			return nil, fmt.Errorf("eventTimestamp: name is required")
		}
		ttl := time.Duration(ts.TTLSeconds * float64(time.Second))
		node := compiler.NewEventTimestamp(ttl)
		if ts.Description != "" {
			node.Description(ts.Description)
		}
		view.WithEventTimestamp(ts.Name, node)
	}
	return view, nil
}

// nodeForSpec builds the typed node for a column and applies the
// constraints its type supports. Constraints on a type that cannot carry
// them are rejected rather than silently dropped.
func nodeForSpec(spec ColumnSpec) (compiler.Node, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	switch spec.Type {
	case "bool":
		if err := rejectOrdered(spec); err != nil {
			return nil, err
		}
		if err := rejectTextual(spec); err != nil {
			return nil, err
		}
		node := compiler.NewBool()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		if spec.Required {
			node.IsRequired()
		}
		return node, nil

	case "float":
		if err := rejectTextual(spec); err != nil {
			return nil, err
		}
		node := compiler.NewFloat()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		if spec.Required {
			node.IsRequired()
		}
		applyBounds(node.LowerBound, node.UpperBound, spec)
		return node, nil

	case "int32":
		if err := rejectTextual(spec); err != nil {
			return nil, err
		}
		node := compiler.NewInt32()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		if spec.Required {
			node.IsRequired()
		}
		applyBounds(node.LowerBound, node.UpperBound, spec)
		return node, nil

	case "int64":
		if err := rejectTextual(spec); err != nil {
			return nil, err
		}
		node := compiler.NewInt64()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		if spec.Required {
			node.IsRequired()
		}
		applyBounds(node.LowerBound, node.UpperBound, spec)
		return node, nil

	case "string":
		if err := rejectOrdered(spec); err != nil {
			return nil, err
		}
		node := compiler.NewString()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		if spec.Required {
			node.IsRequired()
		}
		if spec.MinLength != nil {
			node.MinLength(*spec.MinLength)
		}
		if spec.MaxLength != nil {
			node.MaxLength(*spec.MaxLength)
		}
		if len(spec.AcceptedValues) > 0 {
			node.AcceptedValues(spec.AcceptedValues...)
		}
		return node, nil

	case "datetime":
		if err := rejectOrdered(spec); err != nil {
			return nil, err
		}
		if err := rejectTextual(spec); err != nil {
			return nil, err
		}
		node := compiler.NewTimestamp()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		return node, nil

	case "uuid":
		if err := rejectOrdered(spec); err != nil {
			return nil, err
		}
		if err := rejectTextual(spec); err != nil {
			return nil, err
		}
		node := compiler.NewUUID()
		if spec.Description != "" {
			node.Description(spec.Description)
		}
		return node, nil

	default:
		return nil, fmt.Errorf("unsupported type %q", spec.Type)
	}
}

func applyBounds(lower, upper func(value float64, inclusive bool), spec ColumnSpec) {
	if spec.LowerBound != nil {
		lower(*spec.LowerBound, true)
	}
	if spec.UpperBound != nil {
		upper(*spec.UpperBound, true)
	}
}

func rejectOrdered(spec ColumnSpec) error {
	if spec.LowerBound != nil || spec.UpperBound != nil {
		return fmt.Errorf("type %q does not support bounds", spec.Type)
	}
	return nil
}

func rejectTextual(spec ColumnSpec) error {
	if spec.MinLength != nil || spec.MaxLength != nil || len(spec.AcceptedValues) > 0 {
		return fmt.Errorf("type %q does not support length or value constraints", spec.Type)
	}
	return nil
}

func buildSource(spec SourceSpec) (retrieval.BatchSource, error) {
	switch spec.Kind {
	case "", "none":
		return nil, nil
	case "csv":
		if spec.Path == "" {
			return nil, fmt.Errorf("source: path is required for csv")
		}
		source := &sources.CSVFileSource{
			Path:        spec.Path,
			MappingKeys: spec.Mapping,
			Config:      sources.DefaultCSVConfig,
		}
		if spec.Separator != "" {
			source.Config.Separator = []rune(spec.Separator)[0]
		}
		return source, nil
	case "psql":
		if spec.EnvVar == "" || spec.Table == "" {
			return nil, fmt.Errorf("source: envVar and table are required for psql")
		}
		return &sources.PostgreSQLSource{
			Config:      sources.PostgreSQLConfig{EnvVar: spec.EnvVar},
			TableName:   spec.Table,
			SchemaName:  spec.Schema,
			MappingKeys: spec.Mapping,
		}, nil
	default:
		return nil, fmt.Errorf("source: unsupported kind %q", spec.Kind)
	}
}
