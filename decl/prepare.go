package decl

// PrepareTypeDefs removes typedef entries that the same file also declares as
// prototype fields; the field declaration wins. Inner files are included.
// It returns the number of entries removed.
func PrepareTypeDefs(files []*File) int {
	removed := 0
	for _, f := range files {
		f.Walk(func(x *File) {
			removed += prepareTypeDef(x)
		})
	}
	return removed
}

func prepareTypeDef(f *File) int {
	if f.Element == nil || f.Element.Kind != KindTypedef || len(f.TypeDef) == 0 {
		return 0
	}
	shadowed := make(map[string]bool, len(f.Fields))
	for _, field := range f.Fields {
		shadowed[field.Name] = true
	}
	kept := f.TypeDef[:0]
	for _, p := range f.TypeDef {
		if !shadowed[p.Name] {
			kept = append(kept, p)
		}
	}
	removed := len(f.TypeDef) - len(kept)
	f.TypeDef = kept
	return removed
}
