package gpxfield

import (
	"strings"

	"github.com/planbiir/gpxkit/internal/xmlnode"
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

// Writer accumulates marshaled text. Without pretty printing every element
// still starts on its own line but is not indented.
type Writer struct {
	strings.Builder
	pretty bool
}

// NewWriter returns an empty Writer
func NewWriter(pretty bool) *Writer {
	return &Writer{pretty: pretty}
}

func (w *Writer) newline(indent string) {
	w.WriteByte('\n')
	if w.pretty {
		w.WriteString(indent)
	}
}

// element writes an extension subtree
func (w *Writer) element(e *xmlnode.Element, indent string) {
	w.newline(indent)
	w.WriteString("<" + e.Tag)
	for _, a := range e.Attrs {
		w.WriteString(" " + a.Name + `="` + escapeAttr(a.Value) + `"`)
	}
	w.WriteString(">")
	w.WriteString(strings.TrimSpace(escapeText(e.Text)))
	for _, child := range e.Children {
		w.element(child, indent+"  ")
	}
	if len(e.Children) > 0 {
		w.newline(indent)
	}
	w.WriteString("</" + e.Tag + ">")
	w.WriteString(strings.TrimSpace(escapeText(e.Tail)))
}

// trimmed drops the surrounding whitespace the writer does not reproduce
func trimmed(e *xmlnode.Element) *xmlnode.Element {
	e.Text = strings.TrimSpace(e.Text)
	e.Tail = strings.TrimSpace(e.Tail)
	for _, c := range e.Children {
		trimmed(c)
	}
	return e
}

// Marshal writes e as <tag> using the table for version. extra attributes
// are written first on the start tag.
func Marshal[T any](w *Writer, s *Schema[T], e *T, tag, version, indent string, extra ...xmlnode.Attr) {
	if !w.pretty {
		indent = ""
	}

	open := false
	if tag != "" {
		w.newline(indent)
		w.WriteString("<" + tag)
		for _, a := range extra {
			w.WriteString(" " + a.Name + `="` + escapeAttr(a.Value) + `"`)
		}
		open = true
	}

	closeStart := func() {
		if open {
			w.WriteString(">")
			open = false
		}
	}

	suppressUntil := ""
	for _, f := range s.Fields(version) {
		d := f.desc()

		switch d.kind {
		case kindGroupStart:
			if suppressUntil != "" {
				continue
			}
			if !s.dependentsSet(e, version, d) {
				suppressUntil = d.tag
				continue
			}
			closeStart()
			if w.pretty {
				indent += "  "
			}
			w.newline(indent)
			w.WriteString("<" + d.tag)
			open = true
			continue

		case kindGroupEnd:
			if suppressUntil != "" {
				if suppressUntil == d.tag {
					suppressUntil = ""
				}
				continue
			}
			closeStart()
			w.newline(indent)
			w.WriteString("</" + d.tag + ">")
			if w.pretty && len(indent) > 1 {
				indent = indent[:len(indent)-2]
			}
			continue
		}

		if suppressUntil != "" {
			continue
		}

		if d.attr != "" {
			if v, ok := f.attrValue(e); ok {
				w.WriteString(" " + d.attr + `="` + escapeAttr(v) + `"`)
			}
			continue
		}

		if !f.present(e) {
			continue
		}
		closeStart()
		f.marshal(w, e, version, indent+"  ")
	}

	if tag != "" {
		closeStart()
		w.newline(indent)
		w.WriteString("</" + tag + ">")
	}
}
