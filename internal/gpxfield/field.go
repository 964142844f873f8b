// Package gpxfield is a declarative GPX codec. Every entity declares one
// field table per GPX version and the generic Marshal/Unmarshal drivers walk
// those tables.
package gpxfield

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/planbiir/gpxkit/internal/xmlnode"
)

type kind int

const (
	kindScalar kind = iota
	kindComplex
	kindExtensions
	kindEmail
	kindGroupStart
	kindGroupEnd
)

// descriptor is what the drivers need to know about a field besides its value
type descriptor struct {
	kind     kind
	name     string // entity attribute, empty for group markers
	tag      string
	attr     string // set when the value is an XML attribute
	required []string
	optional []string
}

// Field is one entry in an entity's field table. The variants are Scalar,
// List, Nested, Extensions, Email, GroupStart and GroupEnd.
type Field[T any] interface {
	desc() *descriptor
	// present mirrors "value is not None": unset scalars are absent, lists never are
	present(e *T) bool
	// hasValue is the truthiness used by group dependents
	hasValue(e *T) bool
	isDefault(e *T) bool
	attrValue(e *T) (string, bool)
	marshal(w *Writer, e *T, version, indent string)
	unmarshal(e *T, n xmlnode.Node, version string) error
}

// Scalar is a leaf value. Optional values are stored behind a pointer and
// nil means unset.
type Scalar[T any, V any] struct {
	d         descriptor
	get       func(*T) *V
	set       func(*T, *V)
	conv      Converter[V]
	mandatory bool
	allowed   []string
}

func newScalar[T any, V any](name string, conv Converter[V], ref func(*T) **V) *Scalar[T, V] {
	return &Scalar[T, V]{
		d:    descriptor{kind: kindScalar, name: name, tag: name},
		get:  func(e *T) *V { return *ref(e) },
		set:  func(e *T, v *V) { *ref(e) = v },
		conv: conv,
	}
}

// FloatValue declares a mandatory float stored by value, e.g. a coordinate
func FloatValue[T any](name string, ref func(*T) *float64) *Scalar[T, float64] {
	return &Scalar[T, float64]{
		d:   descriptor{kind: kindScalar, name: name, tag: name},
		get: ref,
		set: func(e *T, v *float64) {
			if v != nil {
				*ref(e) = *v
			}
		},
		conv:      FloatConverter{},
		mandatory: true,
	}
}

// Float declares a float field
func Float[T any](name string, ref func(*T) **float64) *Scalar[T, float64] {
	return newScalar(name, Converter[float64](FloatConverter{}), ref)
}

// Int declares an integer field
func Int[T any](name string, ref func(*T) **int) *Scalar[T, int] {
	return newScalar(name, Converter[int](IntConverter{}), ref)
}

// String declares a text field
func String[T any](name string, ref func(*T) **string) *Scalar[T, string] {
	return newScalar(name, Converter[string](StringConverter{}), ref)
}

// Time declares a timestamp field
func Time[T any](name string, ref func(*T) **time.Time) *Scalar[T, time.Time] {
	return newScalar(name, Converter[time.Time](TimeConverter{}), ref)
}

// Tag sets the element name
func (s *Scalar[T, V]) Tag(tag string) *Scalar[T, V] {
	s.d.tag = tag
	return s
}

// Attr binds the value to an attribute of the entity element
func (s *Scalar[T, V]) Attr(attr string) *Scalar[T, V] {
	s.d.attr = attr
	s.d.tag = ""
	return s
}

// Mandatory makes a missing value a document error
func (s *Scalar[T, V]) Mandatory() *Scalar[T, V] {
	s.mandatory = true
	return s
}

// Allowed restricts the values accepted on unmarshal
func (s *Scalar[T, V]) Allowed(values ...string) *Scalar[T, V] {
	s.allowed = values
	return s
}

func (s *Scalar[T, V]) desc() *descriptor { return &s.d }

func (s *Scalar[T, V]) present(e *T) bool { return s.get(e) != nil }

func (s *Scalar[T, V]) hasValue(e *T) bool {
	v := s.get(e)
	if v == nil {
		return false
	}
	if str, ok := any(*v).(string); ok {
		return str != ""
	}
	return true
}

// isDefault treats mandatory values as having no default
func (s *Scalar[T, V]) isDefault(e *T) bool { return s.mandatory || s.get(e) == nil }

func (s *Scalar[T, V]) attrValue(e *T) (string, bool) {
	v := s.get(e)
	if v == nil {
		return "", false
	}
	return s.conv.Format(*v), true
}

func (s *Scalar[T, V]) marshal(w *Writer, e *T, _, indent string) {
	v := s.get(e)
	if v == nil {
		return
	}
	w.newline(indent)
	w.WriteString("<" + s.d.tag + ">")
	w.WriteString(escapeText(s.conv.Format(*v)))
	w.WriteString("</" + s.d.tag + ">")
}

func (s *Scalar[T, V]) unmarshal(e *T, n xmlnode.Node, _ string) error {
	var raw string
	var found bool
	if s.d.attr != "" {
		raw, found = n.Attribute(s.d.attr)
	} else if child := n.FirstChild(s.d.tag); child != nil {
		raw = child.Text()
		found = raw != ""
	}

	if !found {
		if s.mandatory {
			return Semanticf("%s is mandatory in %s", s.d.name, n.Name())
		}
		s.set(e, nil)
		return nil
	}

	v, err := s.conv.Parse(raw)
	if err != nil {
		return Semanticf("invalid value for <%s>: %q (%v)", s.location(), raw, err)
	}
	if v != nil && len(s.allowed) > 0 && !slices.Contains(s.allowed, s.conv.Format(*v)) {
		return Semanticf("invalid value %q for %s, possible: %v", raw, s.location(), s.allowed)
	}
	s.set(e, v)
	return nil
}

func (s *Scalar[T, V]) location() string {
	if s.d.attr != "" {
		return "@" + s.d.attr
	}
	return s.d.tag
}

// Complex recurses into another schema, either for one nested entity or an
// ordered list of them
type Complex[T any, C any] struct {
	d      descriptor
	schema *Schema[C]
	list   func(*T) *[]C
	one    func(*T) **C
}

// List declares a repeated child entity
func List[T any, C any](name, tag string, schema *Schema[C], ref func(*T) *[]C) *Complex[T, C] {
	return &Complex[T, C]{
		d:      descriptor{kind: kindComplex, name: name, tag: tag},
		schema: schema,
		list:   ref,
	}
}

// Nested declares a single optional child entity
func Nested[T any, C any](name, tag string, schema *Schema[C], ref func(*T) **C) *Complex[T, C] {
	return &Complex[T, C]{
		d:      descriptor{kind: kindComplex, name: name, tag: tag},
		schema: schema,
		one:    ref,
	}
}

func (c *Complex[T, C]) desc() *descriptor { return &c.d }

func (c *Complex[T, C]) present(e *T) bool {
	if c.list != nil {
		return true
	}
	return *c.one(e) != nil
}

func (c *Complex[T, C]) hasValue(e *T) bool {
	if c.list != nil {
		return len(*c.list(e)) > 0
	}
	return *c.one(e) != nil
}

func (c *Complex[T, C]) isDefault(e *T) bool { return !c.hasValue(e) }

func (c *Complex[T, C]) attrValue(*T) (string, bool) { return "", false }

func (c *Complex[T, C]) marshal(w *Writer, e *T, version, indent string) {
	if c.list != nil {
		items := *c.list(e)
		for i := range items {
			Marshal(w, c.schema, &items[i], c.d.tag, version, indent)
		}
		return
	}
	if child := *c.one(e); child != nil {
		Marshal(w, c.schema, child, c.d.tag, version, indent)
	}
}

func (c *Complex[T, C]) unmarshal(e *T, n xmlnode.Node, version string) error {
	if c.list != nil {
		var items []C
		for _, child := range n.Children() {
			if child.Name() != c.d.tag {
				continue
			}
			item, err := Unmarshal(c.schema, child, version)
			if err != nil {
				return fmt.Errorf("%s[%d]: %w", c.d.tag, len(items), err)
			}
			items = append(items, *item)
		}
		*c.list(e) = items
		return nil
	}

	child := n.FirstChild(c.d.tag)
	if child == nil {
		*c.one(e) = nil
		return nil
	}
	item, err := Unmarshal(c.schema, child, version)
	if err != nil {
		return fmt.Errorf("%s: %w", c.d.tag, err)
	}
	*c.one(e) = item
	return nil
}

// extensions is the opaque pass-through of an <extensions> element
type extensions[T any] struct {
	d   descriptor
	ref func(*T) *[]*xmlnode.Element
}

// Extensions declares an extensions field. It is only written for GPX 1.1.
func Extensions[T any](name string, ref func(*T) *[]*xmlnode.Element) Field[T] {
	return &extensions[T]{
		d:   descriptor{kind: kindExtensions, name: name, tag: "extensions"},
		ref: ref,
	}
}

func (x *extensions[T]) desc() *descriptor { return &x.d }

func (x *extensions[T]) present(*T) bool { return true }

func (x *extensions[T]) hasValue(e *T) bool { return len(*x.ref(e)) > 0 }

func (x *extensions[T]) isDefault(e *T) bool { return len(*x.ref(e)) == 0 }

func (x *extensions[T]) attrValue(*T) (string, bool) { return "", false }

func (x *extensions[T]) marshal(w *Writer, e *T, version, indent string) {
	items := *x.ref(e)
	if len(items) == 0 || version != "1.1" {
		return
	}
	w.newline(indent)
	w.WriteString("<" + x.d.tag + ">")
	for _, item := range items {
		w.element(item, indent+"  ")
	}
	w.newline(indent)
	w.WriteString("</" + x.d.tag + ">")
}

func (x *extensions[T]) unmarshal(e *T, n xmlnode.Node, _ string) error {
	var items []*xmlnode.Element
	if ext := n.FirstChild(x.d.tag); ext != nil {
		for _, child := range ext.Children() {
			items = append(items, trimmed(xmlnode.Copy(child)))
		}
	}
	*x.ref(e) = items
	return nil
}

// email stores "id@domain" and writes <email id=".." domain=".." />
type email[T any] struct {
	d   descriptor
	ref func(*T) **string
}

// Email declares a GPX 1.1 email element
func Email[T any](name, tag string, ref func(*T) **string) Field[T] {
	return &email[T]{
		d:   descriptor{kind: kindEmail, name: name, tag: tag},
		ref: ref,
	}
}

func (m *email[T]) desc() *descriptor { return &m.d }

func (m *email[T]) present(e *T) bool { return *m.ref(e) != nil }

func (m *email[T]) hasValue(e *T) bool {
	v := *m.ref(e)
	return v != nil && *v != ""
}

func (m *email[T]) isDefault(e *T) bool { return *m.ref(e) == nil }

func (m *email[T]) attrValue(*T) (string, bool) { return "", false }

func (m *email[T]) marshal(w *Writer, e *T, _, indent string) {
	v := *m.ref(e)
	if v == nil || *v == "" {
		return
	}
	id, domain, found := strings.Cut(*v, "@")
	if !found {
		domain = "unknown"
	}
	w.newline(indent)
	w.WriteString("<" + m.d.tag + ` id="` + escapeAttr(id) + `" domain="` + escapeAttr(domain) + `" />`)
}

func (m *email[T]) unmarshal(e *T, n xmlnode.Node, _ string) error {
	child := n.FirstChild(m.d.tag)
	if child == nil {
		*m.ref(e) = nil
		return nil
	}
	id, _ := child.Attribute("id")
	domain, _ := child.Attribute("domain")
	v := id + "@" + domain
	*m.ref(e) = &v
	return nil
}

// group is a GroupStart or GroupEnd marker
type group[T any] struct {
	d descriptor
}

// GroupStart opens an optional wrapper element. It is written only when one
// of the required dependents, or any dependent if none is required, has a value.
func GroupStart[T any](tag string, required []string, optional ...string) Field[T] {
	return &group[T]{d: descriptor{kind: kindGroupStart, tag: tag, required: required, optional: optional}}
}

// GroupEnd closes the wrapper opened by the GroupStart with the same tag
func GroupEnd[T any](tag string) Field[T] {
	return &group[T]{d: descriptor{kind: kindGroupEnd, tag: tag}}
}

func (g *group[T]) desc() *descriptor { return &g.d }

func (g *group[T]) present(*T) bool { return false }

func (g *group[T]) hasValue(*T) bool { return false }

func (g *group[T]) isDefault(*T) bool { return true }

func (g *group[T]) attrValue(*T) (string, bool) { return "", false }

func (g *group[T]) marshal(*Writer, *T, string, string) {}

func (g *group[T]) unmarshal(*T, xmlnode.Node, string) error { return nil }
