package decl

import "github.com/teranos/jsbind/typenode"

// GroupFiles nests every file whose namespace ends in another file's name
// under that file, and returns the files left at top level in input order.
//
// A namespace that names a file exactly ("ol.Map" for file ol.Map) wins over
// a match on the last segment alone. Among files sharing a simple name, the
// first in input order is the candidate. A file never becomes its own parent,
// and an assignment that would close a cycle is skipped.
func GroupFiles(files []*File) []*File {
	byQualified := make(map[string]*File, len(files))
	bySimple := make(map[string]*File, len(files))
	for _, f := range files {
		if _, ok := byQualified[f.QualifiedName()]; !ok {
			byQualified[f.QualifiedName()] = f
		}
		if _, ok := bySimple[f.Name]; !ok {
			bySimple[f.Name] = f
		}
	}

	parent := make(map[*File]*File, len(files))
	for _, f := range files {
		if f.Namespace == "" {
			continue
		}
		p, ok := byQualified[f.Namespace]
		if !ok {
			p, ok = bySimple[typenode.SimpleName(f.Namespace)]
		}
		if !ok || p == f || reaches(parent, p, f) {
			continue
		}
		parent[f] = p
	}

	var top []*File
	for _, f := range files {
		if p, ok := parent[f]; ok {
			p.Inner = append(p.Inner, f)
			continue
		}
		top = append(top, f)
	}
	return top
}

// reaches reports whether following parent links from start arrives at target.
func reaches(parent map[*File]*File, start, target *File) bool {
	for cur := start; cur != nil; cur = parent[cur] {
		if cur == target {
			return true
		}
	}
	return false
}
