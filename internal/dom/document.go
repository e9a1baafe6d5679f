// Package dom is a small headless document model used by the page controllers.
// Pages are parsed with golang.org/x/net/html; controllers find elements by their
// data-testid, mutate markup and attributes, and react to dispatched events.
package dom

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultWidth is the rendered width, in pixels, assumed for elements without a data-width attribute
const DefaultWidth = 800

const emptyPage = "<!DOCTYPE html><html><head></head><body></body></html>"

// File is a file selected in a file input
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Document is a parsed page with its event listeners
type Document struct {
	root      *html.Node
	body      *html.Node
	listeners map[*html.Node]map[string][]Listener
	files     map[*html.Node][]File
	width     int
	page      int // bumped each time the content is replaced
	alert     func(message string)
	alerts    []string
}

// New creates an empty document
func New() *Document {
	d, err := Parse(emptyPage)
	if err != nil {
		panic(err)
	}
	return d
}

// Parse parses a complete HTML page
func Parse(markup string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	d := &Document{
		root:  root,
		width: DefaultWidth,
	}
	d.body = findNode(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Body
	})
	if d.body == nil {
		return nil, fmt.Errorf("parsing document: no body element")
	}
	d.reset()
	return d, nil
}

func (d *Document) reset() {
	d.page++
	d.listeners = make(map[*html.Node]map[string][]Listener)
	d.files = make(map[*html.Node][]File)
}

// SetWidth sets the rendered width used for elements without a data-width attribute
func (d *Document) SetWidth(width int) {
	d.width = width
}

// SetBody replaces the page content. Listeners and selected files of the previous
// content are discarded, including listeners attached to the body itself.
func (d *Document) SetBody(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), d.body)
	if err != nil {
		return fmt.Errorf("parsing body: %w", err)
	}
	for c := d.body.FirstChild; c != nil; {
		next := c.NextSibling
		d.body.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		d.body.AppendChild(n)
	}
	d.reset()
	return nil
}

// Body returns the body element
func (d *Document) Body() *Element {
	return d.wrap(d.body)
}

// HTML renders the whole document
func (d *Document) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return ""
	}
	return buf.String()
}

// ByTestID returns the first element whose data-testid is id, or nil
func (d *Document) ByTestID(id string) *Element {
	return d.Body().ByTestID(id)
}

// AllByTestID returns every element whose data-testid is id, in document order
func (d *Document) AllByTestID(id string) []*Element {
	return d.Body().AllByTestID(id)
}

// ByID returns the element with the given id attribute, or nil
func (d *Document) ByID(id string) *Element {
	return d.wrap(findNode(d.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	}))
}

// OnAlert installs the function called for every alert
func (d *Document) OnAlert(fn func(message string)) {
	d.alert = fn
}

// Alert shows a blocking message to the user
func (d *Document) Alert(message string) {
	d.alerts = append(d.alerts, message)
	if d.alert != nil {
		d.alert(message)
	}
}

// Alerts returns the messages alerted so far
func (d *Document) Alerts() []string {
	return append([]string(nil), d.alerts...)
}

// Click dispatches a click on el
func (d *Document) Click(ctx context.Context, el *Element) error {
	return d.Dispatch(ctx, &Event{Type: EventClick, Target: el})
}

// Submit dispatches a submit on a form
func (d *Document) Submit(ctx context.Context, form *Element) error {
	return d.Dispatch(ctx, &Event{Type: EventSubmit, Target: form})
}

// Change sets the value of el and dispatches a change
func (d *Document) Change(ctx context.Context, el *Element, value string) error {
	el.SetValue(value)
	return d.Dispatch(ctx, &Event{Type: EventChange, Target: el})
}

// Upload selects files on a file input and dispatches a change.
// The input value mimics browsers: a fake path ending with the first file name.
func (d *Document) Upload(ctx context.Context, input *Element, files ...File) error {
	if input == nil {
		return fmt.Errorf("upload: no input element")
	}
	d.files[input.node] = files
	value := ""
	if len(files) > 0 {
		value = `C:\fakepath\` + files[0].Name
	}
	setAttr(input.node, "value", value)
	return d.Dispatch(ctx, &Event{Type: EventChange, Target: input})
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func findNode(n *html.Node, match func(*html.Node) bool) *html.Node {
	if match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, match); found != nil {
			return found
		}
	}
	return nil
}

func findNodes(n *html.Node, match func(*html.Node) bool, out []*html.Node) []*html.Node {
	if match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = findNodes(c, match, out)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}
