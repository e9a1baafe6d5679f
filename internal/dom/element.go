package dom

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an element node of a Document
type Element struct {
	doc  *Document
	node *html.Node
}

// Is reports whether e and other wrap the same node
func (e *Element) Is(other *Element) bool {
	return e != nil && other != nil && e.node == other.node
}

// Tag returns the lower-case tag name
func (e *Element) Tag() string {
	return e.node.Data
}

// TestID returns the data-testid attribute
func (e *Element) TestID() string {
	return attr(e.node, "data-testid")
}

// Attr returns the named attribute, or "" when absent
func (e *Element) Attr(key string) string {
	return attr(e.node, key)
}

// HasAttr reports whether the named attribute is present
func (e *Element) HasAttr(key string) bool {
	return hasAttr(e.node, key)
}

// SetAttr sets the named attribute
func (e *Element) SetAttr(key, val string) {
	setAttr(e.node, key, val)
}

// HasClass reports whether class is in the class attribute
func (e *Element) HasClass(class string) bool {
	for _, c := range strings.Fields(attr(e.node, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass appends class to the class attribute when missing
func (e *Element) AddClass(class string) {
	if e.HasClass(class) {
		return
	}
	setAttr(e.node, "class", strings.TrimSpace(attr(e.node, "class")+" "+class))
}

// Parent returns the parent element, or nil at the top of the tree
func (e *Element) Parent() *Element {
	p := e.node.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.wrap(p)
}

// Closest returns the nearest element, starting with e itself, carrying the data-testid
func (e *Element) Closest(testID string) *Element {
	for n := e.node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && attr(n, "data-testid") == testID {
			return e.doc.wrap(n)
		}
	}
	return nil
}

// ByTestID returns the first descendant with the data-testid, or nil
func (e *Element) ByTestID(id string) *Element {
	return e.doc.wrap(findNode(e.node, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "data-testid") == id
	}))
}

// AllByTestID returns every descendant with the data-testid
func (e *Element) AllByTestID(id string) []*Element {
	nodes := findNodes(e.node, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "data-testid") == id
	}, nil)
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, e.doc.wrap(n))
	}
	return elements
}

// ByClass returns the first descendant carrying the class, or nil
func (e *Element) ByClass(class string) *Element {
	return e.doc.wrap(findNode(e.node, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n == e.node {
			return false
		}
		return (&Element{node: n}).HasClass(class)
	}))
}

// ByTag returns the first descendant with the tag name, or nil
func (e *Element) ByTag(tag string) *Element {
	return e.doc.wrap(findNode(e.node, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n != e.node && n.Data == tag
	}))
}

// AllByTag returns every descendant with the tag name
func (e *Element) AllByTag(tag string) []*Element {
	nodes := findNodes(e.node, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n != e.node && n.Data == tag
	}, nil)
	elements := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, e.doc.wrap(n))
	}
	return elements
}

// Text returns the concatenated text content
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return b.String()
}

// InnerHTML renders the children of e
func (e *Element) InnerHTML() string {
	var buf bytes.Buffer
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return buf.String()
		}
	}
	return buf.String()
}

// SetInnerHTML replaces the children of e with parsed markup
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	e.clear()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) clear() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
}

// Value returns the current value of a form control
func (e *Element) Value() string {
	switch e.node.DataAtom {
	case atom.Textarea:
		return e.Text()
	case atom.Select:
		var first *html.Node
		for _, opt := range findNodes(e.node, isOption, nil) {
			if first == nil {
				first = opt
			}
			if hasAttr(opt, "selected") {
				return optionValue(opt)
			}
		}
		if first != nil {
			return optionValue(first)
		}
		return ""
	default:
		return attr(e.node, "value")
	}
}

// SetValue sets the value of a form control. Clearing a file input also drops its files.
func (e *Element) SetValue(v string) {
	switch e.node.DataAtom {
	case atom.Textarea:
		e.clear()
		e.node.AppendChild(&html.Node{Type: html.TextNode, Data: v})
	case atom.Select:
		for _, opt := range findNodes(e.node, isOption, nil) {
			if optionValue(opt) == v {
				setAttr(opt, "selected", "")
			} else {
				removeAttr(opt, "selected")
			}
		}
	default:
		setAttr(e.node, "value", v)
		if v == "" {
			delete(e.doc.files, e.node)
		}
	}
}

// Files returns the files selected on a file input
func (e *Element) Files() []File {
	return e.doc.files[e.node]
}

// Width returns the rendered width in pixels
func (e *Element) Width() int {
	if w, err := strconv.Atoi(attr(e.node, "data-width")); err == nil {
		return w
	}
	return e.doc.width
}

// Show opens a modal element
func (e *Element) Show() {
	e.AddClass("show")
	e.SetAttr("aria-hidden", "false")
}

// Shown reports whether a modal element was opened
func (e *Element) Shown() bool {
	return e.HasClass("show")
}

// AddEventListener attaches fn to events of the given type on e and its descendants
func (e *Element) AddEventListener(eventType string, fn Listener) {
	byType := e.doc.listeners[e.node]
	if byType == nil {
		byType = make(map[string][]Listener)
		e.doc.listeners[e.node] = byType
	}
	byType[eventType] = append(byType[eventType], fn)
}

func isOption(n *html.Node) bool {
	return n.Type == html.ElementNode && n.DataAtom == atom.Option
}

func optionValue(n *html.Node) string {
	if hasAttr(n, "value") {
		return attr(n, "value")
	}
	return strings.TrimSpace((&Element{node: n}).Text())
}
