// Package render turns expanded declarations into output documents, applying
// the user's mapping table on the way.
package render

import (
	"strings"

	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/mapping"
	"github.com/teranos/jsbind/typenode"
)

// Document is the rendered form of one file and the files grouped under it
type Document struct {
	Path       string     `json:"path" yaml:"path"`
	Namespace  string     `json:"namespace" yaml:"namespace"`
	Name       string     `json:"name" yaml:"name"`
	Kind       string     `json:"kind" yaml:"kind"`
	Extends    string     `json:"extends,omitempty" yaml:"extends,omitempty"`
	Implements []string   `json:"implements,omitempty" yaml:"implements,omitempty"`
	TypeDef    []Param    `json:"typedef,omitempty" yaml:"typedef,omitempty"`
	Members    []Method   `json:"members,omitempty" yaml:"members,omitempty"`
	Fields     []Field    `json:"fields,omitempty" yaml:"fields,omitempty"`
	Inner      []Document `json:"inner,omitempty" yaml:"inner,omitempty"`
}

// QualifiedName returns Namespace.Name
func (d Document) QualifiedName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// Method is one concrete overload
type Method struct {
	Name         string  `json:"name" yaml:"name"`
	OriginalName string  `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	Kind         string  `json:"kind" yaml:"kind"`
	Visibility   string  `json:"visibility" yaml:"visibility"`
	Static       bool    `json:"static,omitempty" yaml:"static,omitempty"`
	Params       []Param `json:"params,omitempty" yaml:"params,omitempty"`
	Returns      string  `json:"returns,omitempty" yaml:"returns,omitempty"`
	Raw          string  `json:"raw" yaml:"raw"` // source signature
}

// Field is one concrete field
type Field struct {
	Name         string `json:"name" yaml:"name"`
	OriginalName string `json:"original_name,omitempty" yaml:"original_name,omitempty"`
	Visibility   string `json:"visibility" yaml:"visibility"`
	Static       bool   `json:"static,omitempty" yaml:"static,omitempty"`
	Type         string `json:"type" yaml:"type"`
}

// Param is a named, mapped type
type Param struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Variadic bool   `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// Renderer converts decl files into documents
type Renderer struct {
	table *mapping.Table
}

// New creates a Renderer. A nil table renders source type names.
func New(table *mapping.Table) *Renderer {
	return &Renderer{table: table}
}

// Documents renders every top-level file, in order. Skipped classes and
// members are left out.
func (r *Renderer) Documents(files []*decl.File) []Document {
	docs := make([]Document, 0, len(files))
	for _, f := range files {
		if doc, ok := r.document(f); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (r *Renderer) document(f *decl.File) (Document, bool) {
	class := f.QualifiedName()
	if r.table.Skipped(class, "") {
		return Document{}, false
	}

	doc := Document{
		Path:      f.Path,
		Namespace: f.Namespace,
		Name:      f.Name,
	}
	if e := f.Element; e != nil {
		doc.Kind = string(e.Kind)
		if e.Extends != nil {
			doc.Extends = r.typeName(e.Extends)
		}
		for _, n := range e.Implements {
			doc.Implements = append(doc.Implements, r.typeName(n))
		}
	}
	for _, p := range f.TypeDef {
		doc.TypeDef = append(doc.TypeDef, r.param(p))
	}

	for _, d := range f.Members {
		if r.table.Skipped(class, d.BaseName()) {
			continue
		}
		doc.Members = append(doc.Members, r.method(class, d))
	}
	for _, d := range f.Fields {
		if r.table.Skipped(class, d.BaseName()) {
			continue
		}
		doc.Fields = append(doc.Fields, Field{
			Name:         d.Name,
			OriginalName: d.OriginalName,
			Visibility:   string(d.Visibility),
			Static:       d.Static,
			Type:         r.resolved(d.Return, class, d.BaseName()),
		})
	}

	for _, inner := range f.Inner {
		if child, ok := r.document(inner); ok {
			doc.Inner = append(doc.Inner, child)
		}
	}
	return doc, true
}

func (r *Renderer) method(class string, d *decl.Declaration) Method {
	m := Method{
		Name:         d.Name,
		OriginalName: d.OriginalName,
		Kind:         string(d.Kind),
		Visibility:   string(d.Visibility),
		Static:       d.Static,
		Raw:          d.Signature(),
	}
	for _, p := range d.Params {
		rp := r.param(p)
		if target, ok := r.table.Replacement(class, d.BaseName(), p.Name); ok {
			rp.Type = target
		}
		m.Params = append(m.Params, rp)
	}
	if d.Return != nil {
		m.Returns = r.resolved(d.Return, class, d.BaseName())
	}
	return m
}

// resolved renders a return or field type, honouring a class#member replace
func (r *Renderer) resolved(t typenode.Type, class, member string) string {
	if target, ok := r.table.Replacement(class, member); ok {
		return target
	}
	return r.typeName(t)
}

func (r *Renderer) param(p decl.Param) Param {
	out := Param{Name: p.Name}
	if p.Type != nil {
		out.Type = r.typeName(p.Type)
		out.Variadic = p.Type.Mods().Variadic
		out.Nullable = p.Type.Mods().Nullable
	}
	return out
}

func (r *Renderer) typeName(t typenode.Type) string {
	return displayName(r.table.MapType(t))
}

// displayName renders a (mapped) type as Name<Arg, Arg>. Unions render as
// alternatives joined by " | "; function and record types render verbatim.
func displayName(t typenode.Type) string {
	switch v := t.(type) {
	case *typenode.Named:
		if len(v.Generics) == 0 {
			return v.Name
		}
		args := make([]string, len(v.Generics))
		for i, g := range v.Generics {
			args[i] = displayName(g)
		}
		return v.Name + "<" + strings.Join(args, ", ") + ">"
	case *typenode.Union:
		alts := make([]string, len(v.Alternatives))
		for i, a := range v.Alternatives {
			alts[i] = displayName(a)
		}
		return strings.Join(alts, " | ")
	}
	return ""
}
