package render

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/kins/internal/event"
)

// DefaultTag is used when an element is created with an empty tag.
const DefaultTag = "div"

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// Element is an HTML element or text node usable as an event.Mirror.
type Element struct {
	node *html.Node
}

var _ event.Mirror = (*Element)(nil)

// NewElement creates a detached element. Attribute aliases are applied.
func NewElement(tag string, attrs map[string]string) *Element {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		tag = DefaultTag
	}
	e := &Element{node: &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}}
	for name, value := range attrs {
		e.SetAttribute(name, value)
	}
	return e
}

// NewText creates a detached text node.
func NewText(text string) *Element {
	return &Element{node: &html.Node{Type: html.TextNode, Data: text}}
}

// Parse builds an element from markup holding a single top-level node.
func Parse(markup string) (*Element, error) {
	nodes, err := parseFragment(markup, bodyContext())
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("%w: got %d", ErrFragment, len(nodes))
	}
	sortAttrs(nodes[0])
	return &Element{node: nodes[0]}, nil
}

// Of returns the Element mirroring n, if any.
func Of(n *event.Node) (*Element, bool) {
	e, ok := n.Mirror().(*Element)
	return e, ok
}

// Node returns the underlying HTML node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns the element's tag name, or "" for a text node.
func (e *Element) Tag() string {
	if e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// Void reports whether the element is an HTML void element.
func (e *Element) Void() bool {
	return e.node.Type == html.ElementNode && voidElements[e.node.Data]
}

// AttributeName maps the aliases className and htmlFor to their HTML names.
func AttributeName(name string) string {
	switch name {
	case "className":
		return "class"
	case "htmlFor":
		return "for"
	default:
		return name
	}
}

// SetAttribute sets or replaces an attribute.
func (e *Element) SetAttribute(name, value string) {
	name = AttributeName(name)
	i, found := slices.BinarySearchFunc(e.node.Attr, name, func(a html.Attribute, key string) int {
		return cmp.Compare(a.Key, key)
	})
	if found {
		e.node.Attr[i].Val = value
		return
	}
	e.node.Attr = slices.Insert(e.node.Attr, i, html.Attribute{Key: name, Val: value})
}

// Attribute returns an attribute's value.
func (e *Element) Attribute(name string) (string, bool) {
	name = AttributeName(name)
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// RemoveAttribute deletes an attribute and reports whether it was present.
func (e *Element) RemoveAttribute(name string) bool {
	name = AttributeName(name)
	before := len(e.node.Attr)
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Key == name
	})
	return len(e.node.Attr) != before
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) error {
	if err := e.canHaveChildren(); err != nil {
		return err
	}
	e.clear()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return nil
}

// SetInnerHTML replaces the element's children with parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	if err := e.canHaveChildren(); err != nil {
		return err
	}
	nodes, err := parseFragment(markup, e.node)
	if err != nil {
		return err
	}
	e.clear()
	for _, n := range nodes {
		sortAttrs(n)
		e.node.AppendChild(n)
	}
	return nil
}

// AppendChild implements event.Mirror.
func (e *Element) AppendChild(child event.Mirror) error {
	c, err := e.adoptable(child)
	if err != nil {
		return err
	}
	e.node.AppendChild(c.node)
	return nil
}

// InsertBefore implements event.Mirror.
func (e *Element) InsertBefore(child, ref event.Mirror) error {
	c, err := e.adoptable(child)
	if err != nil {
		return err
	}
	r, err := e.child(ref)
	if err != nil {
		return err
	}
	e.node.InsertBefore(c.node, r.node)
	return nil
}

// RemoveChild implements event.Mirror.
func (e *Element) RemoveChild(child event.Mirror) error {
	c, err := e.child(child)
	if err != nil {
		return err
	}
	e.node.RemoveChild(c.node)
	return nil
}

// Markup returns the element's HTML. Serialization errors yield "".
func (e *Element) Markup() string {
	var b strings.Builder
	if err := e.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// Render writes the element's HTML to w.
func (e *Element) Render(w io.Writer) error {
	return html.Render(w, e.node)
}

func (e *Element) canHaveChildren() error {
	if e.node.Type != html.ElementNode || e.Void() {
		return fmt.Errorf("%w: %s", ErrNoChildren, e.describe())
	}
	return nil
}

func (e *Element) adoptable(m event.Mirror) (*Element, error) {
	if err := e.canHaveChildren(); err != nil {
		return nil, err
	}
	c, ok := m.(*Element)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignMirror, m)
	}
	if c.node.Parent != nil {
		return nil, fmt.Errorf("%w: %s", ErrHasParent, c.describe())
	}
	return c, nil
}

func (e *Element) child(m event.Mirror) (*Element, error) {
	c, ok := m.(*Element)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrForeignMirror, m)
	}
	if c.node.Parent != e.node {
		return nil, fmt.Errorf("%w: %s in %s", ErrNotChild, c.describe(), e.describe())
	}
	return c, nil
}

func (e *Element) clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

func (e *Element) describe() string {
	if e.node.Type == html.TextNode {
		return "#text"
	}
	return "<" + e.node.Data + ">"
}

func bodyContext() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
}

func parseFragment(markup string, context *html.Node) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}
	return nodes, nil
}

func sortAttrs(n *html.Node) {
	slices.SortStableFunc(n.Attr, func(a, b html.Attribute) int {
		return cmp.Compare(a.Key, b.Key)
	})
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sortAttrs(c)
	}
}
