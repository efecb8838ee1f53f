package typenode

import (
	"fmt"
	"strings"
)

// Descriptor is a serialisable view of a Type tree used by JSON/YAML output.
type Descriptor struct {
	Kind         string       `json:"kind" yaml:"kind"`
	Raw          string       `json:"raw" yaml:"raw"`
	Name         string       `json:"name,omitempty" yaml:"name,omitempty"`
	Flags        []string     `json:"flags,omitempty" yaml:"flags,omitempty"`
	Generics     []Descriptor `json:"generics,omitempty" yaml:"generics,omitempty"`
	Alternatives []Descriptor `json:"alternatives,omitempty" yaml:"alternatives,omitempty"`
}

// Describe converts t into a Descriptor. A nil type yields the zero value.
func Describe(t Type) Descriptor {
	switch v := t.(type) {
	case *Named:
		d := Descriptor{Kind: "named", Raw: v.RawType, Name: v.Name, Flags: v.Flags()}
		for _, g := range v.Generics {
			d.Generics = append(d.Generics, Describe(g))
		}
		return d
	case *Union:
		d := Descriptor{Kind: "union", Raw: v.RawType, Flags: v.Flags()}
		for _, alt := range v.Alternatives {
			d.Alternatives = append(d.Alternatives, Describe(alt))
		}
		return d
	}
	return Descriptor{}
}

// Lines renders t as indented lines, one node per line, for tree printers.
// Each entry carries its depth so callers can build leveled lists.
func Lines(t Type) []Line {
	var out []Line
	appendLines(&out, t, 0)
	return out
}

// Line is one node of a rendered tree.
type Line struct {
	Depth int
	Text  string
}

func appendLines(out *[]Line, t Type, depth int) {
	switch v := t.(type) {
	case *Named:
		*out = append(*out, Line{Depth: depth, Text: label("Named", v.Name, v.RawType, v.Modifiers)})
		for _, g := range v.Generics {
			appendLines(out, g, depth+1)
		}
	case *Union:
		*out = append(*out, Line{Depth: depth, Text: label("Union", "", v.RawType, v.Modifiers)})
		for _, alt := range v.Alternatives {
			appendLines(out, alt, depth+1)
		}
	}
}

func label(kind, name, raw string, m Modifiers) string {
	var sb strings.Builder
	sb.WriteString(kind)
	if kind == "Named" {
		fmt.Fprintf(&sb, " %q", name)
	}
	fmt.Fprintf(&sb, " raw=%q", raw)
	if flags := m.Flags(); len(flags) > 0 {
		fmt.Fprintf(&sb, " [%s]", strings.Join(flags, ","))
	}
	return sb.String()
}

// Format renders t as an indented multi-line string.
func Format(t Type) string {
	var sb strings.Builder
	for _, l := range Lines(t) {
		sb.WriteString(strings.Repeat("  ", l.Depth))
		sb.WriteString(l.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
