// Package dom provides the in-memory element tree the board renders into:
// templates, element lookup, event dispatch and drag sessions.
package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document owns the live tree and the parsed templates.
type Document struct {
	root      *Element
	templates map[string]*Element
}

// NewDocument builds an empty html > body tree. Each hostID becomes a div
// under body, in order.
func NewDocument(hostIDs ...string) *Document {
	root := NewElement("html")
	body := NewElement("body")
	root.InsertAdjacent(BeforeEnd, body)
	for _, id := range hostIDs {
		host := NewElement("div")
		host.ID = id
		body.InsertAdjacent(BeforeEnd, host)
	}
	return &Document{root: root, templates: map[string]*Element{}}
}

// LoadTemplates parses HTML markup and registers every <template id=...> it
// contains. The first element inside each template becomes its content.
func (d *Document) LoadTemplates(r io.Reader) error {
	node, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	var walk func(*html.Node) error
	walk = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.DataAtom == atom.Template {
			id := attrValue(n, "id")
			if id == "" {
				return nil
			}
			content := firstElementChild(n)
			if content == nil {
				return fmt.Errorf("template %q: %w", id, ErrEmptyTemplate)
			}
			d.templates[id] = convertNode(content)
			return nil
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(node)
}

// ImportTemplate returns a detached deep copy of the named template content.
func (d *Document) ImportTemplate(name string) (*Element, error) {
	tmpl, ok := d.templates[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrTemplateNotFound)
	}
	return tmpl.Clone(), nil
}

// ElementByID finds an attached element by id.
func (d *Document) ElementByID(id string) (*Element, error) {
	var found *Element
	d.root.Walk(func(e *Element) bool {
		if e.ID == id {
			found = e
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("%q: %w", id, ErrElementNotFound)
	}
	return found, nil
}

func convertNode(n *html.Node) *Element {
	el := NewElement(n.Data)
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "id":
			el.ID = a.Val
		case "class":
			el.AddClass(strings.Fields(a.Val)...)
		case "value":
			el.Value = a.Val
		case "draggable":
			el.Draggable = strings.EqualFold(a.Val, "true")
		}
	}
	var text []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			child := convertNode(c)
			el.InsertAdjacent(BeforeEnd, child)
		case html.TextNode:
			if t := strings.TrimSpace(c.Data); t != "" {
				text = append(text, t)
			}
		}
	}
	el.Text = strings.Join(text, " ")
	return el
}

func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
