package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/jsbind/annotation"
	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/frontend"
	"github.com/teranos/jsbind/mapping"
	"github.com/teranos/jsbind/overload"
)

const manifest = `
schema_version: "1.0.0"
files:
  - path: src/ol/map.js
    namespace: ol
    name: Map
    extends: ol.Object
    members:
      - name: Map
        kind: constructor
        params: [{name: options, type: "ol.Map.Options"}]
      - name: setCenter
        params:
          - {name: center, type: "ol.Coordinate"}
          - {name: zoom, type: "number="}
      - name: getValue
        returns: "number|ol.geom.Point"
      - name: getRenderer
        returns: "ol.renderer.Map"
      - name: forEach
        static: true
        params: [{name: items, type: "...Array.<number>"}]
    fields:
      - {name: target, type: "Element", visibility: protected}
  - path: src/ol/map_options.js
    namespace: ol.Map
    name: Options
    kind: typedef
    typedef:
      - {name: zoom, type: "number|undefined"}
  - path: src/ol/disposable.js
    namespace: ol
    name: Disposable
`

func fixture(t *testing.T) []*decl.File {
	t.Helper()
	m, err := frontend.Decode([]byte(manifest), frontend.FormatYAML)
	require.NoError(t, err)
	files, skipped := frontend.Build(m)
	require.Empty(t, skipped)
	top := decl.GroupFiles(files)
	for _, f := range top {
		overload.ExpandFile(f, 0)
	}
	return top
}

func table() *mapping.Table {
	t := mapping.New()
	t.Types["number"] = "double"
	t.Types["Array"] = "JsArray"
	t.Types["ol.Coordinate"] = "Coordinate"
	t.Skip = []string{"ol.Map#getRenderer", "ol.Disposable"}
	t.Replace["ol.Map#setCenter#center"] = "LatLng"
	t.Replace["ol.Map#getValue"] = "Object"
	return t
}

func TestDocumentsApplyMapping(t *testing.T) {
	docs := New(table()).Documents(fixture(t))

	require.Len(t, docs, 1, "ol.Disposable is skipped")
	d := docs[0]
	assert.Equal(t, "ol.Map", d.QualifiedName())
	assert.Equal(t, "class", d.Kind)
	assert.Equal(t, "ol.Object", d.Extends)

	var names []string
	for _, m := range d.Members {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Map", "setCenter", "setCenter", "getValueNumber", "getValuePoint", "forEach"}, names)

	setCenter := d.Members[1]
	require.Len(t, setCenter.Params, 2)
	assert.Equal(t, "LatLng", setCenter.Params[0].Type, "replace wins over types")
	assert.Equal(t, "double", setCenter.Params[1].Type)
	assert.Equal(t, "setCenter(ol.Coordinate,number)", setCenter.Raw)

	getValue := d.Members[3]
	assert.Equal(t, "getValue", getValue.OriginalName)
	assert.Equal(t, "Object", getValue.Returns, "return replace applies to every replica")

	forEach := d.Members[5]
	assert.True(t, forEach.Static)
	assert.True(t, forEach.Params[0].Variadic)
	assert.Equal(t, "JsArray<double>", forEach.Params[0].Type)

	require.Len(t, d.Fields, 1)
	assert.Equal(t, "protected", d.Fields[0].Visibility)

	require.Len(t, d.Inner, 1)
	opts := d.Inner[0]
	assert.Equal(t, "ol.Map.Options", opts.QualifiedName())
	require.Len(t, opts.TypeDef, 1)
	assert.Equal(t, "double", opts.TypeDef[0].Type)
	assert.True(t, opts.TypeDef[0].Nullable)
}

func TestDocumentsWithoutTable(t *testing.T) {
	docs := New(nil).Documents(fixture(t))
	require.Len(t, docs, 2)
	assert.Equal(t, "ol.Coordinate", docs[0].Members[1].Params[0].Type)
	assert.Equal(t, "Array<number>", docs[0].Members[6].Params[0].Type)
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"number", "number"},
		{"!ol.Coordinate=", "ol.Coordinate"},
		{"Object.<string, Array.<number>>", "Object<string, Array<number>>"},
		{"(string|ol.Feature)", "string | ol.Feature"},
		{"Array.<(number|string)>", "Array<number | string>"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, displayName(annotation.MustParse(tt.in)))
		})
	}
	assert.Equal(t, "", displayName(nil))
}

func TestEncodeText(t *testing.T) {
	data, err := Encode(New(table()).Documents(fixture(t)), "text")
	require.NoError(t, err)

	want := `class ol.Map extends ol.Object
  protected Element target
  public Map(ol.Map.Options options)
  public void setCenter(LatLng center, double zoom)
  public void setCenter(LatLng center)
  public Object getValueNumber()
  public Object getValuePoint()
  public static void forEach(JsArray<double>... items)
  typedef ol.Map.Options
    double zoom
`
	assert.Equal(t, want, string(data))
}

func TestEncodeStructured(t *testing.T) {
	docs := New(table()).Documents(fixture(t))

	data, err := Encode(docs, "json")
	require.NoError(t, err)
	var fromJSON []Document
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, docs, fromJSON)

	data, err = Encode(docs, "yaml")
	require.NoError(t, err)
	var fromYAML []Document
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, docs, fromYAML)

	_, err = Encode(docs, "xml")
	assert.Error(t, err)
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()
	docs := New(nil).Documents(fixture(t))

	paths, err := WriteDir(dir, docs, "yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "ol", "Map.yaml"),
		filepath.Join(dir, "ol", "Disposable.yaml"),
	}, paths)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var back []Document
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.Len(t, back, 1)
	assert.Equal(t, "Map", back[0].Name)
	assert.Len(t, back[0].Inner, 1)
}
