package annotation

import (
	"strings"

	"github.com/teranos/jsbind/typenode"
)

// Print renders t back into annotation syntax. Parse(Print(t)) yields a tree
// equal to t for every tree Parse produces.
func Print(t typenode.Type) string {
	if t == nil {
		return ""
	}
	var sb strings.Builder
	m := t.Mods()
	if m.Variadic {
		sb.WriteString("...")
	}
	if m.NotNull {
		sb.WriteByte('!')
	}
	if m.Nullable {
		sb.WriteByte('?')
	}
	if _, ok := t.(*typenode.Union); ok {
		sb.WriteByte('(')
		sb.WriteString(t.Raw())
		sb.WriteByte(')')
	} else {
		sb.WriteString(t.Raw())
	}
	if m.Optional {
		sb.WriteByte('=')
	}
	return sb.String()
}
