// Package overload compiles declarations with optional or union-typed
// parameters and union return types into concrete overloads.
//
// Expansion runs in three steps:
//
//  1. Optional truncation: the full parameter list, then the prefix before the
//     last optional parameter, then the prefix before the one before that, and
//     so on. N optional parameters give N+1 lists, longest first.
//  2. Union expansion: every parameter whose type is a union, directly or inside
//     a generic argument, is replaced by each of its alternatives in turn.
//     Alternative k of a parameter lands at index base + k*count, where count
//     is the number of lists built so far, so the alternatives of an earlier
//     parameter vary fastest.
//  3. Return expansion: a union return (or field) type replicates every
//     overload once per alternative, appending the alternative's capitalised
//     simple name to the declaration name.
//
// No size limit is applied here. Callers that need one use Count or
// ExpandFile's limit.
package overload

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/typenode"
)

// Expand returns the concrete overloads of d in order. Every overload has
// non-union parameter types, no optional parameters and a non-union return
// type. A declaration that is already concrete yields one overload equal to
// it. d is not modified.
func Expand(d *decl.Declaration) []*decl.Declaration {
	returns := returnAlternatives(d.Return)

	var out []*decl.Declaration
	seen := make(map[string]bool)
	for _, params := range truncate(d.Params) {
		for _, combo := range product(params) {
			for i, ret := range returns {
				o := d.Clone()
				o.Params = combo
				if i > 0 {
					o.Params = cloneParams(combo)
				}
				o.Return = ret.typ
				if ret.suffix != "" || len(returns) > 1 {
					o.OriginalName = d.BaseName()
					o.Name = d.Name + ret.suffix
				}
				sig := o.Signature()
				if seen[sig] {
					continue
				}
				seen[sig] = true
				out = append(out, o)
			}
		}
	}
	return out
}

// Count returns len(Expand(d)) without building the overloads. The result
// saturates at math.MaxInt.
func Count(d *decl.Declaration) int {
	total := 0
	for _, params := range truncate(d.Params) {
		n := 1
		for _, p := range params {
			n = mulSat(n, len(alternatives(p.Type)))
		}
		total = addSat(total, n)
	}
	return mulSat(total, len(returnAlternatives(d.Return)))
}

// truncate applies the optional-parameter cut points. The returned lists
// share the backing array of params.
func truncate(params []decl.Param) [][]decl.Param {
	variants := [][]decl.Param{params}
	last := len(params)
	for {
		cut := -1
		for i := last - 1; i >= 0; i-- {
			if params[i].Type != nil && params[i].Type.Mods().Optional {
				cut = i
				break
			}
		}
		if cut < 0 {
			return variants
		}
		variants = append(variants, params[:cut])
		last = cut
	}
}

// product builds the Cartesian product of the parameters' alternatives in
// alternative-major order.
func product(params []decl.Param) [][]decl.Param {
	combos := [][]decl.Param{nil}
	for _, p := range params {
		alts := alternatives(p.Type)
		next := make([][]decl.Param, 0, len(combos)*len(alts))
		for _, alt := range alts {
			for _, c := range combos {
				t := typenode.Clone(alt)
				if t != nil {
					t.Mods().Optional = false
				}
				next = append(next, appendParam(c, decl.Param{Name: p.Name, Type: t}))
			}
		}
		combos = next
	}
	return combos
}

func appendParam(list []decl.Param, p decl.Param) []decl.Param {
	out := make([]decl.Param, len(list), len(list)+1)
	copy(out, list)
	return append(out, p)
}

func cloneParams(params []decl.Param) []decl.Param {
	out := make([]decl.Param, len(params))
	for i, p := range params {
		out[i] = decl.Param{Name: p.Name, Type: typenode.Clone(p.Type)}
	}
	return out
}

// alternatives returns the concrete choices for one type, deduplicated by raw
// type. A type without unions is its own single choice; nil stays nil.
func alternatives(t typenode.Type) []typenode.Type {
	if t == nil {
		return []typenode.Type{nil}
	}
	var out []typenode.Type
	seen := make(map[string]bool)
	for _, alt := range flatten(t) {
		if seen[alt.Raw()] {
			continue
		}
		seen[alt.Raw()] = true
		out = append(out, alt)
	}
	return out
}

// flatten returns freshly allocated, union-free trees for every choice in t.
func flatten(t typenode.Type) []typenode.Type {
	switch v := t.(type) {
	case *typenode.Union:
		var out []typenode.Type
		for _, alt := range v.Alternatives {
			for _, x := range flatten(alt) {
				inherit(x.Mods(), v.Modifiers)
				out = append(out, x)
			}
		}
		return out
	case *typenode.Named:
		if !typenode.HasUnion(v) {
			return []typenode.Type{typenode.Clone(v)}
		}
		return expandGenerics(v)
	}
	return nil
}

// expandGenerics rebuilds a generic type once per combination of its
// arguments' choices. The first argument varies fastest.
func expandGenerics(n *typenode.Named) []typenode.Type {
	combos := [][]typenode.Type{nil}
	for _, g := range n.Generics {
		alts := alternatives(g)
		next := make([][]typenode.Type, 0, len(combos)*len(alts))
		for _, alt := range alts {
			for _, c := range combos {
				args := make([]typenode.Type, len(c), len(c)+1)
				copy(args, c)
				next = append(next, append(args, typenode.Clone(alt)))
			}
		}
		combos = next
	}

	out := make([]typenode.Type, 0, len(combos))
	for _, args := range combos {
		raws := make([]string, len(args))
		for i, a := range args {
			raws[i] = a.Raw()
		}
		r := typenode.NewNamed(n.Name, n.Name+".<"+strings.Join(raws, ",")+">", args...)
		r.Modifiers = n.Modifiers
		out = append(out, r)
	}
	return out
}

// inherit ORs the modifiers of an enclosing union into one of its choices.
func inherit(m *typenode.Modifiers, outer typenode.Modifiers) {
	m.Optional = m.Optional || outer.Optional
	m.NotNull = m.NotNull || outer.NotNull
	m.Nullable = m.Nullable || outer.Nullable
	m.Variadic = m.Variadic || outer.Variadic
}

type returnChoice struct {
	typ    typenode.Type
	suffix string
}

// returnAlternatives splits a top-level union return type. Unions nested in
// generic arguments of the return type are kept as they are.
func returnAlternatives(t typenode.Type) []returnChoice {
	u, ok := t.(*typenode.Union)
	if !ok {
		return []returnChoice{{typ: typenode.Clone(t)}}
	}

	var out []returnChoice
	seen := make(map[string]bool)
	var add func(u *typenode.Union, outer typenode.Modifiers)
	add = func(u *typenode.Union, outer typenode.Modifiers) {
		inherit(&outer, u.Modifiers)
		for _, alt := range u.Alternatives {
			if nested, ok := alt.(*typenode.Union); ok {
				add(nested, outer)
				continue
			}
			if seen[alt.Raw()] {
				continue
			}
			seen[alt.Raw()] = true
			c := typenode.Clone(alt)
			inherit(c.Mods(), outer)
			out = append(out, returnChoice{typ: c, suffix: Suffix(c)})
		}
	}
	add(u, typenode.Modifiers{})
	return out
}

// Suffix returns the name suffix for a return-type replica: the capitalised
// simple name of t, "Function" for function types, or "" when t has no name.
func Suffix(t typenode.Type) string {
	n, ok := t.(*typenode.Named)
	if !ok {
		return ""
	}
	if n.FunctionType {
		return "Function"
	}
	return capitalize(typenode.SimpleName(n.Name))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func mulSat(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}

func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
