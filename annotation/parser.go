// Package annotation parses JSDoc/Closure type annotations such as
// "(Array.<(number|string)>|undefined)=" into typenode trees.
//
// Grammar (whitespace is skipped everywhere):
//
//	annotation => union ( "," union )* "="?
//	union      => atom ( "|" atom )*
//	atom       => prefix* ( "(" union ")" | function | record | named ) suffix*
//	prefix     => "!" | "?" | "..."
//	suffix     => "!" | "?" | "..." | "="
//	function   => "function(" balanced ")" ( ":" atom )?
//	record     => "{" balanced "}"
//	named      => name ( ( ".<" | "<" ) union ( "," union )* ">" )?
//
// Function and record types are opaque: the balanced run is kept verbatim as
// one node. The literal alternatives null and undefined are not kept; they
// mark the enclosing group nullable.
package annotation

import (
	"fmt"
	"strings"

	"github.com/teranos/jsbind/typenode"
)

const functionPrefix = "function("

// Parse parses one raw annotation.
func Parse(raw string) (typenode.Type, error) {
	return ParseFor(raw, "")
}

// ParseFor parses one raw annotation belonging to owner. The owner is only
// used to label errors.
func ParseFor(raw, owner string) (typenode.Type, error) {
	text := strings.TrimRight(raw, " \t\r\n")
	optional := false
	if strings.HasSuffix(text, "=") {
		optional = true
		text = text[:len(text)-1]
	}

	s := &scanner{raw: raw, src: text, owner: owner}
	t, err := s.parseTop()
	if err != nil {
		return nil, err
	}
	t.Mods().Optional = optional
	return t, nil
}

// MustParse is like Parse but panics on error. For fixtures and tests.
func MustParse(raw string) typenode.Type {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// RequireNamed returns t as a *typenode.Named, or a ValidationError when t is
// a union. role names the position, e.g. "extends".
func RequireNamed(t typenode.Type, owner, role string) (*typenode.Named, error) {
	switch v := t.(type) {
	case *typenode.Named:
		return v, nil
	case *typenode.Union:
		return nil, &ValidationError{
			Raw:     v.RawType,
			Owner:   owner,
			Role:    role,
			Message: fmt.Sprintf("union of %d types where a single type is required", len(v.Alternatives)),
		}
	}
	return nil, &ValidationError{Owner: owner, Role: role, Message: "missing type"}
}

// scanner holds the cursor for one Parse call. Recursion happens only in
// parseUnion (via groups) and parseGenerics; both share the cursor.
type scanner struct {
	raw   string
	src   string
	pos   int
	depth int // generic nesting; variadic is ignored when > 0
	owner string
}

func (s *scanner) parseTop() (typenode.Type, error) {
	start := s.skipSpace()
	var items []typenode.Type
	for {
		t, err := s.parseUnion()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
		s.skipSpace()
		if s.peek() != ',' {
			break
		}
		// a stray top-level comma separates alternatives
		s.pos++
	}
	if s.pos < len(s.src) {
		return nil, s.errorf(s.pos, "unexpected %q", s.src[s.pos]).
			WithSuggestion(fmt.Sprintf("check that every %q has a matching opener", s.src[s.pos]))
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return collapse(strings.TrimSpace(s.src[start:s.pos]), items), nil
}

// parseUnion reads alternatives up to a boundary: ',', '>', ')' or the end.
// The boundary is not consumed.
func (s *scanner) parseUnion() (typenode.Type, error) {
	start := s.skipSpace()
	var items []typenode.Type
	for {
		t, err := s.parseAtom()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
		s.skipSpace()
		if s.peek() != '|' {
			break
		}
		s.pos++
	}
	if len(items) == 1 && !isNullLiteral(items[0]) {
		return items[0], nil
	}
	return collapse(strings.TrimSpace(s.src[start:s.pos]), items), nil
}

// collapse merges parsed alternatives into one node: nested unions are
// flattened, null/undefined literals become nullable, empty slots and
// duplicates by raw type are dropped.
func collapse(raw string, items []typenode.Type) typenode.Type {
	var (
		alts     []typenode.Type
		seen     = make(map[string]bool)
		nullable bool
		literal  typenode.Type
	)
	var add func(t typenode.Type)
	add = func(t typenode.Type) {
		if u, ok := t.(*typenode.Union); ok {
			nullable = nullable || u.Nullable
			for _, alt := range u.Alternatives {
				add(alt)
			}
			return
		}
		if isNullLiteral(t) {
			nullable = true
			if literal == nil {
				literal = t
			}
			return
		}
		if isEmpty(t) || seen[t.Raw()] {
			return
		}
		seen[t.Raw()] = true
		alts = append(alts, t)
	}
	for _, t := range items {
		add(t)
	}

	switch len(alts) {
	case 0:
		if literal == nil {
			return typenode.NewNamed("", "")
		}
		literal.Mods().Nullable = true
		return literal
	case 1:
		alts[0].Mods().Nullable = alts[0].Mods().Nullable || nullable
		return alts[0]
	}
	u := typenode.NewUnion(raw, alts...)
	u.Nullable = nullable
	return u
}

// isEmpty reports whether t is the placeholder left by an empty slot,
// as in "a||b" or "Object.<,number>".
func isEmpty(t typenode.Type) bool {
	n, ok := t.(*typenode.Named)
	return ok && n.RawType == "" && n.Modifiers == (typenode.Modifiers{})
}

func isNullLiteral(t typenode.Type) bool {
	n, ok := t.(*typenode.Named)
	return ok && len(n.Generics) == 0 && !n.FunctionType && (n.Name == "null" || n.Name == "undefined")
}

func (s *scanner) parseAtom() (typenode.Type, error) {
	var mods typenode.Modifiers
	s.readModifiers(&mods, false)

	var (
		t   typenode.Type
		err error
	)
	switch {
	case s.peek() == '(':
		t, err = s.parseGroup()
	case strings.HasPrefix(s.src[s.pos:], functionPrefix):
		t, err = s.parseFunction()
	case s.peek() == '{':
		t, err = s.parseRecord()
	default:
		t, err = s.parseNamed()
	}
	if err != nil {
		return nil, err
	}

	s.readModifiers(&mods, true)
	m := t.Mods()
	m.NotNull = m.NotNull || mods.NotNull
	m.Nullable = m.Nullable || mods.Nullable
	m.Variadic = m.Variadic || mods.Variadic
	return t, nil
}

// readModifiers consumes '!', '?', '...' and, after a type, a stray '='.
// A '=' that is not the final character carries no meaning and is dropped.
func (s *scanner) readModifiers(mods *typenode.Modifiers, suffix bool) {
	for {
		s.skipSpace()
		switch {
		case s.peek() == '!':
			mods.NotNull = true
			s.pos++
		case s.peek() == '?':
			mods.Nullable = true
			s.pos++
		case strings.HasPrefix(s.src[s.pos:], "..."):
			if s.depth == 0 {
				mods.Variadic = true
			}
			s.pos += 3
		case suffix && s.peek() == '=':
			s.pos++
		default:
			return
		}
	}
}

func (s *scanner) parseGroup() (typenode.Type, error) {
	open := s.pos
	s.pos++ // '('
	t, err := s.parseUnion()
	if err != nil {
		return nil, err
	}
	s.skipSpace()
	if s.peek() != ')' {
		return nil, s.errorf(open, "unclosed parenthesis").
			WithSuggestion("add the missing ')'")
	}
	s.pos++
	return t, nil
}

func (s *scanner) parseFunction() (typenode.Type, error) {
	start := s.pos
	s.pos += len(functionPrefix) - 1 // at '('
	if err := s.skipBalanced('(', ')'); err != nil {
		return nil, err
	}
	end := s.pos
	if s.skipSpace(); s.peek() == ':' {
		s.pos++
		// the return type is consumed for balance only
		if _, err := s.parseAtom(); err != nil {
			return nil, err
		}
		end = s.pos
	}
	raw := strings.TrimSpace(s.src[start:end])
	n := typenode.NewNamed(raw, raw)
	n.FunctionType = true
	return n, nil
}

func (s *scanner) parseRecord() (typenode.Type, error) {
	start := s.pos
	if err := s.skipBalanced('{', '}'); err != nil {
		return nil, err
	}
	raw := s.src[start:s.pos]
	return typenode.NewNamed(raw, raw), nil
}

func (s *scanner) parseNamed() (typenode.Type, error) {
	start := s.pos
	var name strings.Builder
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '.' && (s.dotOpensGenerics() || strings.HasPrefix(s.src[s.pos:], "...")) {
			break
		}
		if isSpace(c) {
			s.pos++
			continue
		}
		if isDelimiter(c) {
			break
		}
		name.WriteByte(c)
		s.pos++
	}

	if s.dotOpensGenerics() {
		s.pos++
		s.skipSpace()
	}
	if s.peek() != '<' {
		return typenode.NewNamed(name.String(), strings.TrimSpace(s.src[start:s.pos])), nil
	}
	s.pos++
	generics, err := s.parseGenerics(s.pos - 1)
	if err != nil {
		return nil, err
	}
	return typenode.NewNamed(name.String(), strings.TrimSpace(s.src[start:s.pos]), generics...), nil
}

// dotOpensGenerics reports whether the cursor is on a '.' whose next
// non-space byte is '<'.
func (s *scanner) dotOpensGenerics() bool {
	if s.peek() != '.' {
		return false
	}
	rest := strings.TrimLeft(s.src[s.pos+1:], " \t\n\r")
	return strings.HasPrefix(rest, "<")
}

// parseGenerics reads comma-separated arguments up to the '>' matching the
// '<' at open. The cursor starts just after that '<'.
func (s *scanner) parseGenerics(open int) ([]typenode.Type, error) {
	s.depth++
	defer func() { s.depth-- }()

	var args []typenode.Type
	for {
		arg, err := s.parseUnion()
		if err != nil {
			return nil, err
		}
		if !isEmpty(arg) {
			args = append(args, arg)
		}
		s.skipSpace()
		switch s.peek() {
		case ',':
			s.pos++
		case '>':
			s.pos++
			return args, nil
		default:
			return nil, s.errorf(open, "unclosed generic argument list").
				WithSuggestion("add the missing '>'")
		}
	}
}

// skipBalanced advances past the run that starts at the current open byte
// and ends at its matching close byte.
func (s *scanner) skipBalanced(open, close byte) error {
	begin := s.pos
	depth := 0
	for ; s.pos < len(s.src); s.pos++ {
		switch s.src[s.pos] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				s.pos++
				return nil
			}
		}
	}
	return s.errorf(begin, "unbalanced %q", open).
		WithSuggestion(fmt.Sprintf("add the missing %q", close))
}

func (s *scanner) peek() byte {
	if s.pos < len(s.src) {
		return s.src[s.pos]
	}
	return 0
}

// skipSpace advances past whitespace and returns the new cursor.
func (s *scanner) skipSpace() int {
	for s.pos < len(s.src) && isSpace(s.src[s.pos]) {
		s.pos++
	}
	return s.pos
}

func (s *scanner) errorf(offset int, format string, args ...interface{}) *ParseError {
	return NewParseError(s.raw, fmt.Sprintf(format, args...)).
		WithOwner(s.owner).
		WithOffset(offset)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	switch c {
	case '|', ',', '<', '>', '(', ')', '{', '}', '!', '?', '=':
		return true
	}
	return false
}
