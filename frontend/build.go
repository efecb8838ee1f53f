package frontend

import (
	"fmt"

	"github.com/teranos/jsbind/annotation"
	"github.com/teranos/jsbind/decl"
	"github.com/teranos/jsbind/errors"
	"github.com/teranos/jsbind/logger"
	"github.com/teranos/jsbind/typenode"
)

// SkipError records one declaration, or one whole file, that was left out
// because its annotations could not be parsed or validated
type SkipError struct {
	File        string
	Declaration string
	Err         error
}

func (e *SkipError) Error() string {
	if e.Declaration == "" {
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.File, e.Declaration, e.Err)
}

func (e *SkipError) Unwrap() error {
	return e.Err
}

// Load reads every manifest in order and builds their files. A manifest that
// cannot be read or has an unsupported schema is fatal; a bad annotation only
// skips its declaration.
func Load(paths []string) ([]*decl.File, []*SkipError, error) {
	log := logger.ComponentLogger("frontend")

	var (
		files   []*decl.File
		skipped []*SkipError
	)
	for _, path := range paths {
		m, err := LoadManifest(path)
		if err != nil {
			return nil, nil, err
		}
		built, skips := Build(m)
		for _, s := range skips {
			log.Warnw("Skipped declaration",
				logger.FieldManifest, path,
				logger.FieldFile, s.File,
				logger.FieldDeclaration, s.Declaration,
				logger.FieldError, s.Err)
		}
		log.Debugw("Loaded manifest",
			logger.FieldManifest, path,
			logger.FieldFiles, len(built),
			logger.FieldSkipped, len(skips))
		files = append(files, built...)
		skipped = append(skipped, skips...)
	}
	return files, skipped, nil
}

// Build converts manifest entries into decl files, in manifest order.
func Build(m *Manifest) ([]*decl.File, []*SkipError) {
	var (
		files   []*decl.File
		skipped []*SkipError
	)
	for _, entry := range m.Files {
		f, skips, err := buildFile(entry)
		skipped = append(skipped, skips...)
		if err != nil {
			skipped = append(skipped, &SkipError{File: entry.Path, Declaration: qualify(entry.Namespace, entry.Name), Err: err})
			continue
		}
		files = append(files, f)
	}
	return files, skipped
}

// buildFile returns an error when the type element itself is invalid; bad
// members, fields and typedef entries are skipped individually.
func buildFile(entry FileEntry) (*decl.File, []*SkipError, error) {
	element, err := buildElement(entry)
	if err != nil {
		return nil, nil, err
	}

	f := &decl.File{
		Path:      entry.Path,
		Namespace: entry.Namespace,
		Name:      entry.Name,
		Element:   element,
	}
	owner := f.QualifiedName()

	var skipped []*SkipError
	skip := func(name string, err error) {
		skipped = append(skipped, &SkipError{File: entry.Path, Declaration: name, Err: err})
	}

	for _, td := range entry.TypeDef {
		t, err := annotation.ParseFor(td.Type, owner+"#"+td.Name)
		if err != nil {
			skip(owner+"#"+td.Name, err)
			continue
		}
		f.TypeDef = append(f.TypeDef, decl.Param{Name: td.Name, Type: t})
	}

	for _, me := range entry.Members {
		d, err := buildMember(owner, me, decl.KindMethod)
		if err != nil {
			skip(owner+"#"+me.Name, err)
			continue
		}
		f.Members = append(f.Members, d)
	}

	for _, fe := range entry.Fields {
		d, err := buildMember(owner, fe, decl.KindField)
		if err != nil {
			skip(owner+"#"+fe.Name, err)
			continue
		}
		f.Fields = append(f.Fields, d)
	}

	return f, skipped, nil
}

func buildElement(entry FileEntry) (*decl.Declaration, error) {
	if entry.Name == "" {
		return nil, errors.Wrap(errors.ErrValidation, "file entry has no name")
	}
	kind := decl.KindClass
	if entry.Kind != "" {
		k, err := decl.ParseKind(entry.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	vis, err := decl.ParseVisibility(entry.Visibility)
	if err != nil {
		return nil, err
	}

	d := &decl.Declaration{
		Name:       entry.Name,
		Namespace:  entry.Namespace,
		Kind:       kind,
		Visibility: vis,
		Doc:        entry.Doc,
	}
	owner := d.Owner()

	if entry.Extends != "" {
		n, err := parseNamed(entry.Extends, owner, "extends")
		if err != nil {
			return nil, err
		}
		d.Extends = n
	}
	for _, raw := range entry.Implements {
		n, err := parseNamed(raw, owner, "implements")
		if err != nil {
			return nil, err
		}
		d.Implements = append(d.Implements, n)
	}
	return d, nil
}

func buildMember(namespace string, me MemberEntry, defaultKind decl.Kind) (*decl.Declaration, error) {
	kind := defaultKind
	if me.Kind != "" {
		k, err := decl.ParseKind(me.Kind)
		if err != nil {
			return nil, err
		}
		kind = k
	}
	vis, err := decl.ParseVisibility(me.Visibility)
	if err != nil {
		return nil, err
	}

	d := &decl.Declaration{
		Name:       me.Name,
		Namespace:  namespace,
		Kind:       kind,
		Visibility: vis,
		Static:     me.Static,
		Doc:        me.Doc,
	}
	owner := d.Owner()

	for _, p := range me.Params {
		t, err := annotation.ParseFor(p.Type, owner)
		if err != nil {
			return nil, err
		}
		d.Params = append(d.Params, decl.Param{Name: p.Name, Type: t})
	}

	raw := me.Returns
	if raw == "" {
		raw = me.Type
	}
	if raw != "" {
		t, err := annotation.ParseFor(raw, owner)
		if err != nil {
			return nil, err
		}
		d.Return = t
	}
	return d, nil
}

func parseNamed(raw, owner, role string) (*typenode.Named, error) {
	t, err := annotation.ParseFor(raw, owner)
	if err != nil {
		return nil, err
	}
	return annotation.RequireNamed(t, owner, role)
}

// FromFiles converts decl files back into a manifest. Inner files are
// written after their parent, flattened.
func FromFiles(files []*decl.File) *Manifest {
	m := &Manifest{SchemaVersion: SchemaVersion}
	for _, top := range files {
		top.Walk(func(f *decl.File) {
			m.Files = append(m.Files, fileEntry(f))
		})
	}
	return m
}

func fileEntry(f *decl.File) FileEntry {
	entry := FileEntry{
		Path:      f.Path,
		Namespace: f.Namespace,
		Name:      f.Name,
	}
	if e := f.Element; e != nil {
		entry.Kind = string(e.Kind)
		entry.Visibility = string(e.Visibility)
		entry.Doc = e.Doc
		if e.Extends != nil {
			entry.Extends = annotation.Print(e.Extends)
		}
		for _, n := range e.Implements {
			entry.Implements = append(entry.Implements, annotation.Print(n))
		}
	}
	for _, p := range f.TypeDef {
		entry.TypeDef = append(entry.TypeDef, ParamEntry{Name: p.Name, Type: annotation.Print(p.Type)})
	}
	for _, d := range f.Members {
		entry.Members = append(entry.Members, memberEntry(d))
	}
	for _, d := range f.Fields {
		me := memberEntry(d)
		me.Type, me.Returns = me.Returns, ""
		entry.Fields = append(entry.Fields, me)
	}
	return entry
}

func memberEntry(d *decl.Declaration) MemberEntry {
	me := MemberEntry{
		Name:       d.Name,
		Kind:       string(d.Kind),
		Visibility: string(d.Visibility),
		Static:     d.Static,
		Returns:    annotation.Print(d.Return),
		Doc:        d.Doc,
	}
	for _, p := range d.Params {
		me.Params = append(me.Params, ParamEntry{Name: p.Name, Type: annotation.Print(p.Type)})
	}
	return me
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}
