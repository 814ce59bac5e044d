package dom

import (
	"slices"
	"strings"
)

// Position selects where InsertAdjacent places a new child.
type Position string

// Position values mirror insertAdjacentElement.
const (
	AfterBegin Position = "afterbegin"
	BeforeEnd  Position = "beforeend"
)

// Element is one node in the in-memory tree. Text-only content lives on Text.
type Element struct {
	Tag       string
	ID        string
	Text      string
	Value     string
	Draggable bool

	classes   []string
	children  []*Element
	parent    *Element
	listeners map[string][]Listener
}

// NewElement creates a detached element.
func NewElement(tag string) *Element {
	return &Element{Tag: strings.ToLower(tag)}
}

// Parent returns the parent element, or nil when detached.
func (e *Element) Parent() *Element {
	return e.parent
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// SetText replaces the element content with plain text.
func (e *Element) SetText(text string) {
	e.ReplaceChildren()
	e.Text = text
}

// AddClass adds class names that are not present yet.
func (e *Element) AddClass(names ...string) {
	for _, name := range names {
		if name != "" && !slices.Contains(e.classes, name) {
			e.classes = append(e.classes, name)
		}
	}
}

// RemoveClass removes class names when present.
func (e *Element) RemoveClass(names ...string) {
	e.classes = slices.DeleteFunc(e.classes, func(c string) bool {
		return slices.Contains(names, c)
	})
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes, name)
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	return slices.Clone(e.classes)
}

// InsertAdjacent attaches child as the first or last child of e, detaching it
// from any previous parent first.
func (e *Element) InsertAdjacent(pos Position, child *Element) {
	if child == nil {
		return
	}
	child.Remove()
	child.parent = e
	if pos == AfterBegin {
		e.children = slices.Insert(e.children, 0, child)
		return
	}
	e.children = append(e.children, child)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	if e.parent == nil {
		return
	}
	p := e.parent
	p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
	e.parent = nil
}

// ReplaceChildren detaches every child and clears text.
func (e *Element) ReplaceChildren() {
	for _, c := range e.children {
		c.parent = nil
	}
	e.children = nil
	e.Text = ""
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// Clone deep-copies the subtree without listeners or parent.
func (e *Element) Clone() *Element {
	out := &Element{
		Tag:       e.Tag,
		ID:        e.ID,
		Text:      e.Text,
		Value:     e.Value,
		Draggable: e.Draggable,
		classes:   slices.Clone(e.classes),
	}
	for _, c := range e.children {
		cc := c.Clone()
		cc.parent = out
		out.children = append(out.children, cc)
	}
	return out
}

// Walk visits e and its descendants in document order until fn returns false.
func (e *Element) Walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// QuerySelector returns the first descendant matching a simple selector:
// tag, #id, .class, or a tag followed by #id or .class parts.
func (e *Element) QuerySelector(selector string) *Element {
	sel := parseSelector(selector)
	var found *Element
	for _, c := range e.children {
		c.Walk(func(n *Element) bool {
			if sel.matches(n) {
				found = n
				return false
			}
			return true
		})
		if found != nil {
			return found
		}
	}
	return nil
}

// QuerySelectorAll returns every descendant matching selector in document order.
func (e *Element) QuerySelectorAll(selector string) []*Element {
	sel := parseSelector(selector)
	var out []*Element
	for _, c := range e.children {
		c.Walk(func(n *Element) bool {
			if sel.matches(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

type selector struct {
	tag     string
	id      string
	classes []string
}

func parseSelector(raw string) selector {
	raw = strings.TrimSpace(raw)
	var sel selector
	var cur strings.Builder
	kind := byte(0)
	flush := func() {
		v := cur.String()
		cur.Reset()
		if v == "" {
			return
		}
		switch kind {
		case '#':
			sel.id = v
		case '.':
			sel.classes = append(sel.classes, v)
		default:
			sel.tag = strings.ToLower(v)
		}
	}
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch == '#' || ch == '.' {
			flush()
			kind = ch
			continue
		}
		cur.WriteByte(ch)
	}
	flush()
	return sel
}

func (s selector) matches(e *Element) bool {
	if s.tag == "" && s.id == "" && len(s.classes) == 0 {
		return false
	}
	if s.tag != "" && s.tag != e.Tag {
		return false
	}
	if s.id != "" && s.id != e.ID {
		return false
	}
	for _, c := range s.classes {
		if !e.HasClass(c) {
			return false
		}
	}
	return true
}
