// Package frontend reads declaration manifests (YAML or JSON) and builds the
// decl model from them, parsing every type annotation on the way.
package frontend

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jsbind/errors"
)

// SchemaConstraint is the range of manifest schema versions this build reads
const SchemaConstraint = ">= 1.0.0, < 2.0.0"

// SchemaVersion is written into manifests produced by Encode
const SchemaVersion = "1.0.0"

// Manifest is the on-disk declaration listing
type Manifest struct {
	SchemaVersion string      `yaml:"schema_version" json:"schema_version"`
	Files         []FileEntry `yaml:"files" json:"files"`
}

// FileEntry describes one source file and its type element
type FileEntry struct {
	Path       string        `yaml:"path" json:"path"`
	Namespace  string        `yaml:"namespace" json:"namespace"`
	Name       string        `yaml:"name" json:"name"`
	Kind       string        `yaml:"kind,omitempty" json:"kind,omitempty"` // default: class
	Visibility string        `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Extends    string        `yaml:"extends,omitempty" json:"extends,omitempty"`
	Implements []string      `yaml:"implements,omitempty" json:"implements,omitempty"`
	Doc        string        `yaml:"doc,omitempty" json:"doc,omitempty"`
	TypeDef    []ParamEntry  `yaml:"typedef,omitempty" json:"typedef,omitempty"`
	Members    []MemberEntry `yaml:"members,omitempty" json:"members,omitempty"`
	Fields     []MemberEntry `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// MemberEntry describes a method, constructor or field
type MemberEntry struct {
	Name       string       `yaml:"name" json:"name"`
	Kind       string       `yaml:"kind,omitempty" json:"kind,omitempty"` // default: method, or field under fields
	Visibility string       `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Static     bool         `yaml:"static,omitempty" json:"static,omitempty"`
	Params     []ParamEntry `yaml:"params,omitempty" json:"params,omitempty"`
	Returns    string       `yaml:"returns,omitempty" json:"returns,omitempty"`
	Type       string       `yaml:"type,omitempty" json:"type,omitempty"` // field type
	Doc        string       `yaml:"doc,omitempty" json:"doc,omitempty"`
}

// ParamEntry is one named, annotated parameter or typedef entry
type ParamEntry struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// Format selects the manifest encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file extension
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.WithHint(
		errors.Newf("unknown manifest extension %q", filepath.Ext(path)),
		"manifests must end in .yaml, .yml or .json")
}

// LoadManifest reads and decodes the manifest at path and checks its schema
// version
func LoadManifest(path string) (*Manifest, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %s", path)
	}
	m, err := Decode(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest %s", path)
	}
	return m, nil
}

// Decode parses manifest bytes. Unknown keys are rejected.
func Decode(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "failed to decode YAML manifest")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, errors.Wrap(err, "failed to decode JSON manifest")
		}
	default:
		return nil, errors.Newf("unsupported manifest format %q", format)
	}
	if err := CheckSchema(m.SchemaVersion); err != nil {
		return nil, err
	}
	return &m, nil
}

// Encode writes m in the given format
func Encode(m *Manifest, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML manifest")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML manifest")
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode JSON manifest")
		}
		return append(data, '\n'), nil
	}
	return nil, errors.Newf("unsupported manifest format %q", format)
}

// CheckSchema verifies that version satisfies SchemaConstraint
func CheckSchema(version string) error {
	if version == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrUnsupportedSchema, "schema_version is missing"),
			"add schema_version: \""+SchemaVersion+"\" at the top of the manifest")
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(errors.ErrUnsupportedSchema, "invalid schema_version %q: %v", version, err)
	}

	constraint, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		return errors.Wrapf(err, "invalid schema constraint %s", SchemaConstraint)
	}

	if !constraint.Check(v) {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrUnsupportedSchema, "schema_version %s does not satisfy %s", version, SchemaConstraint),
			"this build reads schema versions %s", SchemaConstraint)
	}
	return nil
}
