// Package decl holds the declaration model built by the front end: files,
// declarations and parameters carrying parsed typenode values.
//
// Declarations are created once per source declaration, mutated only by
// GroupFiles, PrepareTypeDefs and the overload expander, and treated as
// read-only once handed to a renderer.
package decl

import (
	"strings"

	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/typenode"
)

// Kind is the syntactic kind of a declaration.
type Kind string

const (
	KindClass       Kind = "class"
	KindInterface   Kind = "interface"
	KindConstructor Kind = "constructor"
	KindMethod      Kind = "method"
	KindField       Kind = "field"
	KindEnum        Kind = "enum"
	KindTypedef     Kind = "typedef"
	KindConst       Kind = "const"
	KindDefine      Kind = "define"
)

var kinds = []Kind{
	KindClass, KindInterface, KindConstructor, KindMethod, KindField,
	KindEnum, KindTypedef, KindConst, KindDefine,
}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", errors.Wrapf(errors.ErrValidation, "unknown declaration kind %q", s)
}

// IsType reports whether declarations of this kind define a type that can
// own members and inner files.
func (k Kind) IsType() bool {
	switch k {
	case KindClass, KindInterface, KindEnum, KindTypedef:
		return true
	}
	return false
}

// Visibility of a declaration.
type Visibility string

const (
	Public    Visibility = "public"
	Protected Visibility = "protected"
	Private   Visibility = "private"
)

// ParseVisibility validates a visibility name. The empty string means public.
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case "", Public:
		return Public, nil
	case Protected, Private:
		return Visibility(s), nil
	}
	return "", errors.Wrapf(errors.ErrValidation, "unknown visibility %q", s)
}

// Param is one named, typed parameter or typedef entry.
type Param struct {
	Name string
	Type typenode.Type
}

// Declaration is one method, field, constructor or type element.
type Declaration struct {
	Name string
	// OriginalName is set on return-type replicas to the name before
	// disambiguation. Empty otherwise.
	OriginalName string
	// Namespace is the dotted path of the owner: the package for a type
	// element, the owning type for a member.
	Namespace  string
	Kind       Kind
	Visibility Visibility
	Static     bool
	Params     []Param
	// Return is the return type of a method or the type of a field.
	// Nil for void methods and constructors.
	Return     typenode.Type
	Extends    *typenode.Named
	Implements []*typenode.Named
	Doc        string
}

// QualifiedName returns Namespace.Name, or Name when there is no namespace.
func (d *Declaration) QualifiedName() string {
	return qualify(d.Namespace, d.Name)
}

// Owner returns a diagnostic label such as "ol.Map#setCenter".
func (d *Declaration) Owner() string {
	if d.Kind.IsType() || d.Namespace == "" {
		return d.QualifiedName()
	}
	return d.Namespace + "#" + d.Name
}

// BaseName returns OriginalName when set, else Name.
func (d *Declaration) BaseName() string {
	if d.OriginalName != "" {
		return d.OriginalName
	}
	return d.Name
}

// Clone returns a deep copy of d.
func (d *Declaration) Clone() *Declaration {
	if d == nil {
		return nil
	}
	c := *d
	c.Params = cloneParams(d.Params)
	c.Return = typenode.Clone(d.Return)
	if d.Extends != nil {
		c.Extends = typenode.Clone(d.Extends).(*typenode.Named)
	}
	if d.Implements != nil {
		c.Implements = make([]*typenode.Named, len(d.Implements))
		for i, n := range d.Implements {
			c.Implements[i] = typenode.Clone(n).(*typenode.Named)
		}
	}
	return &c
}

// Signature renders the declaration as name(raw, raw):raw using raw types.
// Modifiers other than variadic are not part of the signature.
func (d *Declaration) Signature() string {
	var sb strings.Builder
	sb.WriteString(d.Name)
	sb.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			sb.WriteByte(',')
		}
		if p.Type != nil {
			if p.Type.Mods().Variadic {
				sb.WriteString("...")
			}
			sb.WriteString(p.Type.Raw())
		}
	}
	sb.WriteByte(')')
	if d.Return != nil {
		sb.WriteByte(':')
		sb.WriteString(d.Return.Raw())
	}
	return sb.String()
}

func cloneParams(params []Param) []Param {
	if params == nil {
		return nil
	}
	out := make([]Param, len(params))
	for i, p := range params {
		out[i] = Param{Name: p.Name, Type: typenode.Clone(p.Type)}
	}
	return out
}

// File is one source file: a type element, its members and fields, and the
// files grouped under it.
type File struct {
	// Path is the originating source path, for diagnostics only.
	Path      string
	Namespace string
	Name      string
	Element   *Declaration
	Members   []*Declaration
	Fields    []*Declaration
	// TypeDef lists the record entries of a typedef element.
	TypeDef []Param
	Inner   []*File
}

// QualifiedName returns Namespace.Name.
func (f *File) QualifiedName() string {
	return qualify(f.Namespace, f.Name)
}

// Walk calls fn for f and then every inner file, depth first.
func (f *File) Walk(fn func(*File)) {
	fn(f)
	for _, inner := range f.Inner {
		inner.Walk(fn)
	}
}

// CountDeclarations returns the number of members and fields in f and its
// inner files.
func (f *File) CountDeclarations() int {
	n := 0
	f.Walk(func(x *File) {
		n += len(x.Members) + len(x.Fields)
	})
	return n
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
