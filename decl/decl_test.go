package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/typenode"
)

func file(namespace, name string) *File {
	return &File{
		Namespace: namespace,
		Name:      name,
		Element:   &Declaration{Name: name, Namespace: namespace, Kind: KindClass},
	}
}

func names(files []*File) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.QualifiedName())
	}
	return out
}

func TestGroupFiles(t *testing.T) {
	mapFile := file("ol", "Map")
	options := file("ol.Map", "Options")
	view := file("ol", "View")
	extra := file("ol.Map.Options", "Extra")

	top := GroupFiles([]*File{options, mapFile, extra, view})

	assert.Equal(t, []string{"ol.Map", "ol.View"}, names(top))
	require.Len(t, mapFile.Inner, 1)
	assert.Same(t, options, mapFile.Inner[0])
	require.Len(t, options.Inner, 1)
	assert.Same(t, extra, options.Inner[0])
	assert.Empty(t, view.Inner)
}

func TestGroupFilesOrderIndependent(t *testing.T) {
	build := func(order []int) []string {
		all := []*File{file("ol", "Map"), file("ol.Map", "Options"), file("ol", "View")}
		in := make([]*File, len(order))
		for i, idx := range order {
			in[i] = all[idx]
		}
		top := GroupFiles(in)
		var out []string
		for _, f := range top {
			out = append(out, f.QualifiedName())
			for _, inner := range f.Inner {
				out = append(out, "  "+inner.QualifiedName())
			}
		}
		return out
	}

	a := build([]int{0, 1, 2})
	b := build([]int{1, 0, 2})
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"ol.Map", "  ol.Map.Options", "ol.View"}, a)
}

func TestGroupFilesLeavesUngroupedUntouched(t *testing.T) {
	a := file("ol.source", "Vector")
	b := file("", "Standalone")
	top := GroupFiles([]*File{a, b})
	assert.Equal(t, []string{"ol.source.Vector", "Standalone"}, names(top))
	assert.Empty(t, a.Inner)
	assert.Empty(t, b.Inner)
}

func TestGroupFilesNeverSelfParent(t *testing.T) {
	// namespace ends with the file's own name
	self := file("ol.Map", "Map")
	top := GroupFiles([]*File{self})
	require.Len(t, top, 1)
	assert.Empty(t, self.Inner)
}

func TestGroupFilesBreaksCycles(t *testing.T) {
	a := file("x.B", "A")
	b := file("y.A", "B")
	top := GroupFiles([]*File{a, b})

	// a is nested under b; b stays at top level
	assert.Equal(t, []string{"y.A.B"}, names(top))
	require.Len(t, b.Inner, 1)
	assert.Same(t, a, b.Inner[0])
}

func TestGroupFilesPrefersQualifiedMatch(t *testing.T) {
	other := file("goog", "Map")
	target := file("ol", "Map")
	inner := file("ol.Map", "Options")

	top := GroupFiles([]*File{other, target, inner})
	assert.Equal(t, []string{"goog.Map", "ol.Map"}, names(top))
	assert.Empty(t, other.Inner)
	require.Len(t, target.Inner, 1)
}

func TestPrepareTypeDefs(t *testing.T) {
	f := file("ol", "Options")
	f.Element.Kind = KindTypedef
	f.TypeDef = []Param{
		{Name: "zoom", Type: typenode.NewNamed("number", "number")},
		{Name: "center", Type: typenode.NewNamed("ol.Coordinate", "ol.Coordinate")},
		{Name: "target", Type: typenode.NewNamed("Element", "Element")},
	}
	f.Fields = []*Declaration{{Name: "center", Kind: KindField, Namespace: "ol.Options"}}

	other := file("ol", "Map")
	other.TypeDef = []Param{{Name: "center"}}
	other.Fields = []*Declaration{{Name: "center", Kind: KindField}}

	removed := PrepareTypeDefs([]*File{f, other})
	assert.Equal(t, 1, removed)

	var left []string
	for _, p := range f.TypeDef {
		left = append(left, p.Name)
	}
	assert.Equal(t, []string{"zoom", "target"}, left)
	assert.Len(t, other.TypeDef, 1, "non-typedef files are untouched")
}

func TestParseKindAndVisibility(t *testing.T) {
	k, err := ParseKind("method")
	require.NoError(t, err)
	assert.Equal(t, KindMethod, k)
	assert.False(t, k.IsType())
	assert.True(t, KindInterface.IsType())

	_, err = ParseKind("module")
	assert.True(t, errors.Is(err, errors.ErrValidation))

	v, err := ParseVisibility("")
	require.NoError(t, err)
	assert.Equal(t, Public, v)

	_, err = ParseVisibility("internal")
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestDeclarationHelpers(t *testing.T) {
	d := &Declaration{
		Name:      "setCenter",
		Namespace: "ol.Map",
		Kind:      KindMethod,
		Params: []Param{
			{Name: "center", Type: typenode.NewNamed("ol.Coordinate", "ol.Coordinate")},
		},
		Return:  typenode.NewNamed("boolean", "boolean"),
		Extends: typenode.NewNamed("ol.Object", "ol.Object"),
	}
	assert.Equal(t, "ol.Map.setCenter", d.QualifiedName())
	assert.Equal(t, "ol.Map#setCenter", d.Owner())
	assert.Equal(t, "setCenter(ol.Coordinate):boolean", d.Signature())
	assert.Equal(t, "setCenter", d.BaseName())

	c := d.Clone()
	c.Params[0].Type.Mods().Nullable = true
	c.Extends.Name = "changed"
	assert.False(t, d.Params[0].Type.Mods().Nullable)
	assert.Equal(t, "ol.Object", d.Extends.Name)

	c.OriginalName = "setCenter"
	c.Name = "setCenterNumber"
	assert.Equal(t, "setCenter", c.BaseName())
}

func TestCountDeclarations(t *testing.T) {
	f := file("ol", "Map")
	f.Members = []*Declaration{{Name: "a"}, {Name: "b"}}
	inner := file("ol.Map", "Options")
	inner.Fields = []*Declaration{{Name: "c"}}
	f.Inner = []*File{inner}
	assert.Equal(t, 3, f.CountDeclarations())
}
