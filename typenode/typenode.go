// Package typenode defines the language-neutral type model produced by the
// annotation parser and consumed by the overload expander and renderers.
//
// A Type is either a *Named reference (possibly generic) or a *Union of two or
// more distinct alternatives. The set is closed: no other package can add a
// variant, so a type switch over the two cases is exhaustive.
package typenode

import "strings"

// Modifiers are the flags shared by every Type.
type Modifiers struct {
	// Optional is set by a trailing '='. Only meaningful on a top-level
	// parameter or field type.
	Optional bool `json:"optional,omitempty" yaml:"optional,omitempty"`
	// NotNull is set by a leading '!'.
	NotNull bool `json:"not_null,omitempty" yaml:"not_null,omitempty"`
	// Nullable is set by '?' or by a null/undefined alternative.
	Nullable bool `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	// Variadic is set by '...'. Never set inside a generic argument.
	Variadic bool `json:"variadic,omitempty" yaml:"variadic,omitempty"`
	// FunctionType marks an opaque function(...) node.
	FunctionType bool `json:"function,omitempty" yaml:"function,omitempty"`
}

// Flags returns the names of the set modifiers in a fixed order.
func (m Modifiers) Flags() []string {
	var flags []string
	if m.Optional {
		flags = append(flags, "optional")
	}
	if m.NotNull {
		flags = append(flags, "notNull")
	}
	if m.Nullable {
		flags = append(flags, "nullable")
	}
	if m.Variadic {
		flags = append(flags, "variadic")
	}
	if m.FunctionType {
		flags = append(flags, "function")
	}
	return flags
}

// Type is one parsed type: *Named or *Union.
type Type interface {
	// Raw returns the original annotation substring, the renderer's lookup key.
	Raw() string
	// Mods returns the node's modifiers for reading or updating.
	Mods() *Modifiers
	String() string

	sealed()
}

// Named is a concrete or generic type reference such as "number" or
// "Array.<string>".
type Named struct {
	Modifiers
	RawType  string
	Name     string
	Generics []Type
}

// Union is an unresolved choice between at least two alternatives that are
// distinct by raw type.
type Union struct {
	Modifiers
	RawType      string
	Alternatives []Type
}

// NewNamed creates a named type.
func NewNamed(name, rawType string, generics ...Type) *Named {
	return &Named{Name: name, RawType: rawType, Generics: generics}
}

// NewUnion creates a union of the given alternatives.
func NewUnion(rawType string, alternatives ...Type) *Union {
	return &Union{RawType: rawType, Alternatives: alternatives}
}

func (n *Named) Raw() string {
	return n.RawType
}

func (n *Named) Mods() *Modifiers {
	return &n.Modifiers
}

func (n *Named) String() string {
	return n.RawType
}

func (*Named) sealed() {}

func (u *Union) Raw() string {
	return u.RawType
}

func (u *Union) Mods() *Modifiers {
	return &u.Modifiers
}

func (u *Union) String() string {
	return u.RawType
}

func (*Union) sealed() {}

// IsGeneric reports whether the named type carries generic arguments.
func (n *Named) IsGeneric() bool {
	return len(n.Generics) > 0
}

// SimpleName returns the last dotted segment of a qualified name:
// "ol.geom.Point" -> "Point".
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Namespace returns everything before the last dotted segment:
// "ol.geom.Point" -> "ol.geom".
func Namespace(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// HasUnion reports whether t is a union or holds one in a generic argument.
func HasUnion(t Type) bool {
	switch v := t.(type) {
	case *Union:
		return true
	case *Named:
		for _, g := range v.Generics {
			if HasUnion(g) {
				return true
			}
		}
	}
	return false
}

// Equal reports whether two trees are structurally equal: same variant, raw
// type, name, modifiers and ordered children.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Named:
		y, ok := b.(*Named)
		if !ok || x.Name != y.Name || x.RawType != y.RawType || x.Modifiers != y.Modifiers {
			return false
		}
		return equalList(x.Generics, y.Generics)
	case *Union:
		y, ok := b.(*Union)
		if !ok || x.RawType != y.RawType || x.Modifiers != y.Modifiers {
			return false
		}
		return equalList(x.Alternatives, y.Alternatives)
	}
	return false
}

func equalList(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of t. Clone(nil) is nil.
func Clone(t Type) Type {
	switch v := t.(type) {
	case *Named:
		c := *v
		c.Generics = cloneList(v.Generics)
		return &c
	case *Union:
		c := *v
		c.Alternatives = cloneList(v.Alternatives)
		return &c
	}
	return nil
}

func cloneList(list []Type) []Type {
	if list == nil {
		return nil
	}
	out := make([]Type, len(list))
	for i, t := range list {
		out[i] = Clone(t)
	}
	return out
}

// Walk calls fn for t and every node below it, depth first. Returning false
// from fn stops descent into that node's children.
func Walk(t Type, fn func(Type) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch v := t.(type) {
	case *Named:
		for _, g := range v.Generics {
			Walk(g, fn)
		}
	case *Union:
		for _, alt := range v.Alternatives {
			Walk(alt, fn)
		}
	}
}
