// Package dom provides the element tree that the feedback subsystem reads
// and mutates. It models the small part of a browser document the panel
// needs: id lookup, attributes, classes, text, and form controls.
package dom

import (
	"slices"
	"strings"
)

// Node is a single element in the tree. Nodes built outside a Document may be
// freely modified; once attached, mutate them only through Document methods.
type Node struct {
	Tag      string
	ID       string
	Class    string
	Text     string
	Attrs    map[string]string
	Children []*Node

	parent *Node
}

// NewElement returns a detached element.
func NewElement(tag, id, class string) *Node {
	return &Node{
		Tag:   tag,
		ID:    id,
		Class: class,
		Attrs: map[string]string{},
	}
}

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// Attr returns the named attribute and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// SetAttr sets an attribute on a detached node.
func (n *Node) SetAttr(name, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	n.Attrs[name] = value
	return n
}

// HasClass reports whether class is one of the node's space-separated classes.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(strings.Fields(n.Class), class)
}

func (n *Node) addClass(class string) {
	if n.HasClass(class) {
		return
	}
	if n.Class == "" {
		n.Class = class
		return
	}
	n.Class += " " + class
}

// Append attaches child to a detached node and returns the child.
func (n *Node) Append(child *Node) *Node {
	child.parent = n
	n.Children = append(n.Children, child)
	return child
}

// Walk visits n and its descendants depth-first, stopping when fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// TextContent concatenates the text of n and all descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		b.WriteString(c.Text)
		return true
	})
	return strings.TrimSpace(b.String())
}

func (n *Node) find(id string) *Node {
	if id == "" {
		return nil
	}
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

func (n *Node) detach() {
	p := n.parent
	if p == nil {
		return
	}
	p.Children = slices.DeleteFunc(p.Children, func(c *Node) bool { return c == n })
	n.parent = nil
}

func (n *Node) clone() *Node {
	c := &Node{
		Tag:   n.Tag,
		ID:    n.ID,
		Class: n.Class,
		Text:  n.Text,
		Attrs: make(map[string]string, len(n.Attrs)),
	}
	for k, v := range n.Attrs {
		c.Attrs[k] = v
	}
	for _, child := range n.Children {
		c.Append(child.clone())
	}
	return c
}
