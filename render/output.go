package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teranos/jsbind/am"
	"github.com/teranos/jsbind/errors"
)

// Write encodes docs to w in format (json, yaml or text)
func Write(w io.Writer, docs []Document, format string) error {
	data, err := Encode(docs, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Encode returns docs in format (json, yaml or text)
func Encode(docs []Document, format string) ([]byte, error) {
	switch format {
	case am.FormatJSON, "":
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode JSON")
		}
		return append(data, '\n'), nil
	case am.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "failed to encode YAML")
		}
		return buf.Bytes(), nil
	case am.FormatText:
		var buf bytes.Buffer
		for i, d := range docs {
			if i > 0 {
				buf.WriteByte('\n')
			}
			writeText(&buf, d, 0)
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Wrapf(errors.ErrValidation, "unknown output format %q", format)
}

// writeText renders one document as a compact signature listing:
//
//	class ol.Map extends ol.Object
//	  public void setCenter(Coordinate center)
//	  protected Element target
func writeText(buf *bytes.Buffer, d Document, depth int) {
	indent := strings.Repeat("  ", depth)

	header := d.Kind
	if header == "" {
		header = "class"
	}
	fmt.Fprintf(buf, "%s%s %s", indent, header, d.QualifiedName())
	if d.Extends != "" {
		fmt.Fprintf(buf, " extends %s", d.Extends)
	}
	if len(d.Implements) > 0 {
		fmt.Fprintf(buf, " implements %s", strings.Join(d.Implements, ", "))
	}
	buf.WriteByte('\n')

	for _, p := range d.TypeDef {
		fmt.Fprintf(buf, "%s  %s %s\n", indent, p.Type, p.Name)
	}
	for _, f := range d.Fields {
		fmt.Fprintf(buf, "%s  %s%s %s %s\n", indent, f.Visibility, static(f.Static), f.Type, f.Name)
	}
	for _, m := range d.Members {
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			typ := p.Type
			if p.Variadic {
				typ += "..."
			}
			params[i] = typ + " " + p.Name
		}
		ret := m.Returns
		if ret == "" {
			ret = "void"
		}
		if m.Kind == "constructor" {
			fmt.Fprintf(buf, "%s  %s %s(%s)\n", indent, m.Visibility, m.Name, strings.Join(params, ", "))
			continue
		}
		fmt.Fprintf(buf, "%s  %s%s %s %s(%s)\n", indent, m.Visibility, static(m.Static), ret, m.Name, strings.Join(params, ", "))
	}
	for _, inner := range d.Inner {
		writeText(buf, inner, depth+1)
	}
}

func static(s bool) string {
	if s {
		return " static"
	}
	return ""
}

// Extension returns the file extension for format
func Extension(format string) string {
	switch format {
	case am.FormatYAML:
		return ".yaml"
	case am.FormatText:
		return ".txt"
	}
	return ".json"
}

// WriteDir writes one file per top-level document under dir, at the path of
// its namespace: ol.source.Vector → dir/ol/source/Vector.json. It returns
// the written paths in document order.
func WriteDir(dir string, docs []Document, format string) ([]string, error) {
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		data, err := Encode([]Document{d}, format)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, DocumentPath(d)+Extension(format))
		if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
		}
		if err := os.WriteFile(path, data, am.DefaultFilePermissions); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// DocumentPath returns the namespace path of d, without extension
func DocumentPath(d Document) string {
	parts := strings.Split(d.QualifiedName(), ".")
	return filepath.Join(parts...)
}
