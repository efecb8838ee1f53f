// Package mapping holds the renderer's user configuration: which types to
// rename, which declarations to skip and which individual positions to force
// to a target type. The core never consults it.
package mapping

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/typenode"
)

// Separator joins the parts of skip and replace keys: class#method#param
const Separator = "#"

// Table maps source types to target types.
//
//	types:   name or raw type → target name
//	skip:    "ol.Map" or "ol.Map#setCenter"
//	replace: "ol.Map#setCenter#center" → target param type,
//	         "ol.Map#getSize" → target return type
type Table struct {
	Types   map[string]string `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
	Skip    []string          `json:"skip,omitempty" yaml:"skip,omitempty" toml:"skip,omitempty"`
	Replace map[string]string `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty"`
}

// New returns an empty (identity) table
func New() *Table {
	return &Table{Types: map[string]string{}, Replace: map[string]string{}}
}

// Load reads a mapping table from a .json, .yaml/.yml or .toml file
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read mapping %s", path)
	}

	t := &Table{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(t); err != nil {
			return nil, errors.Wrapf(err, "failed to decode mapping %s", path)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(t); err != nil {
			return nil, errors.Wrapf(err, "failed to decode mapping %s", path)
		}
	case ".toml":
		md, err := toml.Decode(string(data), t)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode mapping %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.Newf("mapping %s has unknown keys: %s", path, strings.Join(keys, ", "))
		}
	default:
		return nil, errors.WithHint(
			errors.Newf("unknown mapping extension %q", filepath.Ext(path)),
			"mapping files must end in .json, .yaml, .yml or .toml")
	}

	if t.Types == nil {
		t.Types = map[string]string{}
	}
	if t.Replace == nil {
		t.Replace = map[string]string{}
	}

	logger.Debugw("Loaded mapping table",
		logger.FieldPath, path,
		"types", len(t.Types),
		"skip", len(t.Skip),
		"replace", len(t.Replace))
	return t, nil
}

// Key joins key parts with Separator
func Key(parts ...string) string {
	return strings.Join(parts, Separator)
}

// Skipped reports whether the class, or the member of the class, is listed
// in skip. member may be empty.
func (t *Table) Skipped(class, member string) bool {
	if t == nil {
		return false
	}
	if slices.Contains(t.Skip, class) {
		return true
	}
	return member != "" && slices.Contains(t.Skip, Key(class, member))
}

// Replacement returns the forced target for a key built from parts:
// (class, method, param) for a parameter, (class, method) for a return or
// field type
func (t *Table) Replacement(parts ...string) (string, bool) {
	if t == nil {
		return "", false
	}
	target, ok := t.Replace[Key(parts...)]
	return target, ok
}

// MapType returns a copy of n with every named node renamed through Types.
// A node is looked up by name first; failing that, by raw type, in which case
// its generic arguments are dropped since the target replaces the whole
// expression. The input is not modified.
func (t *Table) MapType(n typenode.Type) typenode.Type {
	c := typenode.Clone(n)
	if t == nil || c == nil {
		return c
	}
	t.mapInPlace(c)
	return c
}

func (t *Table) mapInPlace(n typenode.Type) {
	switch v := n.(type) {
	case *typenode.Named:
		if target, ok := t.Types[v.Name]; ok {
			v.Name = target
		} else if target, ok := t.Types[v.RawType]; ok {
			v.Name = target
			v.Generics = nil
		}
		for _, g := range v.Generics {
			t.mapInPlace(g)
		}
	case *typenode.Union:
		for _, alt := range v.Alternatives {
			t.mapInPlace(alt)
		}
	}
}

// Keys returns the sorted Types keys, for display
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.Types))
	for k := range t.Types {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
