// Package xmlnode is the small read-only XML tree used by the GPX codec.
// Decoders turn text into a Node tree; the codec only ever talks to Node.
package xmlnode

import (
	"fmt"
	"io"
	"strings"
)

// Attr is a single attribute with its raw (prefixed) name
type Attr struct {
	Name  string
	Value string
}

// Node is the element view the field engine reads from
type Node interface {
	// Name returns the prefixed element name, e.g. "gpxtpx:hr"
	Name() string
	// Text returns the character data before the first child
	Text() string
	// Tail returns the character data after the element's end tag
	Tail() string
	Attribute(name string) (string, bool)
	Attributes() []Attr
	Children() []Node
	// FirstChild returns the first child element with the given name, or nil
	FirstChild(name string) Node
}

// Decoder parses a document and returns its root element
type Decoder interface {
	Decode(r io.Reader) (Node, error)
}

// Element is an owned copy of an XML subtree. It is used for opaque
// extension content that must survive a parse/serialize cycle.
type Element struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []*Element
	Tail     string
}

// Copy converts any node into an independent Element tree
func Copy(n Node) *Element {
	e := &Element{
		Tag:  n.Name(),
		Text: n.Text(),
		Tail: n.Tail(),
	}
	if attrs := n.Attributes(); len(attrs) > 0 {
		e.Attrs = append([]Attr(nil), attrs...)
	}
	for _, child := range n.Children() {
		e.Children = append(e.Children, Copy(child))
	}
	return e
}

// Attr returns the value of the named attribute
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the first direct child with the given tag
func (e *Element) Find(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// node is the tree both decoders build
type node struct {
	name     string
	attrs    []Attr
	text     strings.Builder
	tail     strings.Builder
	children []*node
}

func (n *node) Name() string { return n.name }
func (n *node) Text() string { return n.text.String() }
func (n *node) Tail() string { return n.tail.String() }

func (n *node) Attributes() []Attr { return n.attrs }

func (n *node) Attribute(name string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) Children() []Node {
	nodes := make([]Node, len(n.children))
	for i, c := range n.children {
		nodes[i] = c
	}
	return nodes
}

func (n *node) FirstChild(name string) Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	// untyped nil, callers compare against nil
	return nil
}

// appendCharData adds data to the text of the open element, or to the tail
// of its last child when it already has children
func appendCharData(open *node, data string) {
	if open == nil {
		return
	}
	if len(open.children) == 0 {
		open.text.WriteString(data)
		return
	}
	open.children[len(open.children)-1].tail.WriteString(data)
}

// treeBuilder tracks the element stack while a decoder walks tokens
type treeBuilder struct {
	root  *node
	stack []*node
}

func (b *treeBuilder) start(name string, attrs []Attr) error {
	n := &node{name: name, attrs: attrs}
	if len(b.stack) == 0 {
		if b.root != nil {
			return fmt.Errorf("unexpected element <%s> after document root", name)
		}
		b.root = n
	} else {
		parent := b.stack[len(b.stack)-1]
		parent.children = append(parent.children, n)
	}
	b.stack = append(b.stack, n)
	return nil
}

func (b *treeBuilder) end(name string) error {
	if len(b.stack) == 0 {
		return fmt.Errorf("unexpected end element </%s>", name)
	}
	top := b.stack[len(b.stack)-1]
	if top.name != name {
		return fmt.Errorf("element <%s> closed by </%s>", top.name, name)
	}
	b.stack = b.stack[:len(b.stack)-1]
	return nil
}

func (b *treeBuilder) charData(data string) {
	if len(b.stack) == 0 {
		return
	}
	appendCharData(b.stack[len(b.stack)-1], data)
}

func (b *treeBuilder) finish() (Node, error) {
	if len(b.stack) > 0 {
		return nil, fmt.Errorf("unexpected EOF: element <%s> not closed", b.stack[len(b.stack)-1].name)
	}
	if b.root == nil {
		return nil, fmt.Errorf("document has no root element")
	}
	return b.root, nil
}
