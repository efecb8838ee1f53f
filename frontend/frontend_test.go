package frontend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/typenode"
)

func TestLoadYAMLManifest(t *testing.T) {
	files, skipped, err := Load([]string{"testdata/ol.yaml"})
	require.NoError(t, err)
	require.Len(t, files, 2)

	m := files[0]
	assert.Equal(t, "ol.Map", m.QualifiedName())
	assert.Equal(t, "src/ol/map.js", m.Path)
	require.NotNil(t, m.Element)
	assert.Equal(t, decl.KindClass, m.Element.Kind)
	assert.Equal(t, "ol.Object", m.Element.Extends.Name)
	require.Len(t, m.Element.Implements, 1)
	assert.Equal(t, "ol.Observable", m.Element.Implements[0].Name)

	require.Len(t, m.Members, 3, "broken member is skipped")
	setCenter := m.Members[0]
	assert.Equal(t, "ol.Map", setCenter.Namespace)
	assert.Equal(t, decl.KindMethod, setCenter.Kind)
	assert.Equal(t, decl.Public, setCenter.Visibility)
	require.Len(t, setCenter.Params, 2)
	assert.True(t, setCenter.Params[0].Type.Mods().NotNull)
	assert.True(t, setCenter.Params[1].Type.Mods().Optional)
	assert.Nil(t, setCenter.Return)

	getLayers := m.Members[1].Return.(*typenode.Named)
	assert.Equal(t, "ol.Collection", getLayers.Name)
	require.Len(t, getLayers.Generics, 1)

	assert.Equal(t, decl.KindConstructor, m.Members[2].Kind)

	require.Len(t, m.Fields, 1)
	assert.Equal(t, decl.KindField, m.Fields[0].Kind)
	assert.Equal(t, decl.Protected, m.Fields[0].Visibility)
	_, isUnion := m.Fields[0].Return.(*typenode.Union)
	assert.True(t, isUnion)

	opts := files[1]
	assert.Equal(t, decl.KindTypedef, opts.Element.Kind)
	require.Len(t, opts.TypeDef, 2)
	assert.True(t, opts.TypeDef[0].Type.Mods().Nullable)

	require.Len(t, skipped, 2)
	assert.Equal(t, "ol.Map#broken", skipped[0].Declaration)
	assert.True(t, errors.IsParseError(skipped[0]))
	assert.Equal(t, "ol.Bad", skipped[1].Declaration)
	assert.True(t, errors.IsValidationError(skipped[1]))
	assert.Contains(t, skipped[1].Error(), "src/ol/bad.js")
}

func TestLoadJSONManifest(t *testing.T) {
	files, skipped, err := Load([]string{"testdata/view.json"})
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, files, 1)
	fit := files[0].Members[0]
	assert.Equal(t, "ol.View#fit", fit.Owner())
	require.Len(t, fit.Params, 2)
	_, isUnion := fit.Params[0].Type.(*typenode.Union)
	assert.True(t, isUnion)
}

func TestLoadMultipleKeepsOrder(t *testing.T) {
	files, _, err := Load([]string{"testdata/view.json", "testdata/ol.yaml"})
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.QualifiedName())
	}
	assert.Equal(t, []string{"ol.View", "ol.Map", "ol.Map.Options"}, names)
}

func TestCheckSchema(t *testing.T) {
	tests := []struct {
		version string
		ok      bool
	}{
		{"1.0.0", true},
		{"1.9.3", true},
		{"1.0", true},
		{"2.0.0", false},
		{"0.9.0", false},
		{"", false},
		{"banana", false},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			err := CheckSchema(tt.version)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, errors.ErrUnsupportedSchema), "got %v", err)
		})
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	_, err := Decode([]byte("schema_version: \"1.0.0\"\nfiles: []\nextra: 1\n"), FormatYAML)
	assert.Error(t, err)

	_, err = Decode([]byte(`{"schema_version":"1.0.0","files":[],"extra":1}`), FormatJSON)
	assert.Error(t, err)
}

func TestLoadManifestErrors(t *testing.T) {
	_, err := LoadManifest("testdata/ol.txt")
	assert.Error(t, err)

	_, err = LoadManifest("testdata/missing.yaml")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "old.yaml")
	require.NoError(t, os.WriteFile(path, []byte("schema_version: \"2.1.0\"\nfiles: []\n"), 0644))
	_, _, err = Load([]string{path})
	assert.True(t, errors.Is(err, errors.ErrUnsupportedSchema))
}

func TestManifestRoundTrip(t *testing.T) {
	files, _, err := Load([]string{"testdata/ol.yaml", "testdata/view.json"})
	require.NoError(t, err)

	for _, format := range []Format{FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(FromFiles(files), format)
			require.NoError(t, err)
			m, err := Decode(data, format)
			require.NoError(t, err)
			again, skipped := Build(m)
			assert.Empty(t, skipped)
			require.Len(t, again, len(files))

			for i := range files {
				assertSameFile(t, files[i], again[i])
			}
		})
	}
}

func assertSameFile(t *testing.T, want, got *decl.File) {
	t.Helper()
	assert.Equal(t, want.QualifiedName(), got.QualifiedName())
	assert.Equal(t, want.Path, got.Path)
	assert.Equal(t, want.Element.Kind, got.Element.Kind)
	assert.True(t, typenode.Equal(typeOrNil(want.Element.Extends), typeOrNil(got.Element.Extends)))
	require.Len(t, got.Members, len(want.Members))
	for i := range want.Members {
		assert.Equal(t, want.Members[i].Signature(), got.Members[i].Signature())
		assert.Equal(t, want.Members[i].Kind, got.Members[i].Kind)
		for j := range want.Members[i].Params {
			assert.True(t, typenode.Equal(want.Members[i].Params[j].Type, got.Members[i].Params[j].Type))
		}
	}
	require.Len(t, got.Fields, len(want.Fields))
	for i := range want.Fields {
		assert.True(t, typenode.Equal(want.Fields[i].Return, got.Fields[i].Return))
	}
	require.Len(t, got.TypeDef, len(want.TypeDef))
	for i := range want.TypeDef {
		assert.True(t, typenode.Equal(want.TypeDef[i].Type, got.TypeDef[i].Type))
	}
}

func typeOrNil(n *typenode.Named) typenode.Type {
	if n == nil {
		return nil
	}
	return n
}
