package overload

import (
	"fmt"

	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/errors"
)

// LimitError reports a declaration whose expansion exceeds a caller-chosen
// bound. It unwraps to errors.ErrOverloadLimit.
type LimitError struct {
	File        string
	Declaration *decl.Declaration
	Count       int
	Limit       int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s expands to %d overloads, limit is %d", e.Declaration.Owner(), e.Count, e.Limit)
}

// Unwrap for errors.Is(err, errors.ErrOverloadLimit)
func (e *LimitError) Unwrap() error {
	return errors.ErrOverloadLimit
}

// ExpandFile replaces the members and fields of f and its inner files with
// their overloads, keeping declaration order. Declarations that would expand
// to more than limit overloads are dropped and reported; limit <= 0 means
// unbounded. It returns the number of overloads produced.
func ExpandFile(f *decl.File, limit int) (int, []*LimitError) {
	var (
		produced int
		skipped  []*LimitError
	)
	expandAll := func(path string, list []*decl.Declaration) []*decl.Declaration {
		out := make([]*decl.Declaration, 0, len(list))
		for _, d := range list {
			if limit > 0 {
				if n := Count(d); n > limit {
					skipped = append(skipped, &LimitError{File: path, Declaration: d, Count: n, Limit: limit})
					continue
				}
			}
			overloads := Expand(d)
			produced += len(overloads)
			out = append(out, overloads...)
		}
		return out
	}

	f.Walk(func(x *decl.File) {
		x.Members = expandAll(x.Path, x.Members)
		x.Fields = expandAll(x.Path, x.Fields)
	})
	return produced, skipped
}
