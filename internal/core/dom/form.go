package dom

import "strings"

// Control is a snapshot of one form control.
type Control struct {
	Tag      string
	Type     string // lowercased input type; "text" when absent
	ID       string
	Name     string
	Value    string
	Checked  bool
	ParentID string
}

// Eligible reports whether the control contributes to a serialized form:
// named text, password and hidden inputs, checked checkboxes, and every
// named textarea and select.
func (c Control) Eligible() bool {
	if c.Name == "" {
		return false
	}
	switch c.Tag {
	case "textarea", "select":
		return true
	case "input":
		switch c.Type {
		case "text", "password", "hidden":
			return true
		case "checkbox":
			return c.Checked
		}
	}
	return false
}

// Form is a snapshot of a form element and its controls in document order.
type Form struct {
	ID       string
	Action   string
	Method   string
	Controls []Control
}

// SubmitGroup returns the id of the element enclosing the form's first submit
// input. Responses to the form are anchored there.
func (f Form) SubmitGroup() string {
	for _, c := range f.Controls {
		if c.Tag == "input" && c.Type == "submit" {
			return c.ParentID
		}
	}
	return ""
}

// Form returns a snapshot of the form with id.
func (d *Document) Form(id string) (Form, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := d.root.find(id)
	if n == nil || n.Tag != "form" {
		return Form{}, false
	}

	f := Form{ID: id}
	f.Action, _ = n.Attr("action")
	f.Method, _ = n.Attr("method")
	f.Method = strings.ToUpper(f.Method)
	if f.Method == "" {
		f.Method = "GET"
	}

	n.Walk(func(c *Node) bool {
		switch c.Tag {
		case "input", "textarea", "select":
			f.Controls = append(f.Controls, control(c))
		}
		return true
	})
	return f, true
}

func control(n *Node) Control {
	c := Control{Tag: n.Tag, ID: n.ID}
	c.Name, _ = n.Attr("name")
	if n.parent != nil {
		c.ParentID = n.parent.ID
	}

	switch n.Tag {
	case "input":
		c.Type = "text"
		if t, ok := n.Attr("type"); ok && t != "" {
			c.Type = strings.ToLower(t)
		}
		c.Value, _ = n.Attr("value")
		_, c.Checked = n.Attr("checked")
		if c.Type == "checkbox" && !hasValue(n) {
			c.Value = "on"
		}
	case "textarea":
		c.Value = n.TextContent()
	case "select":
		opts := options(n)
		for _, opt := range opts {
			if _, ok := opt.Attr("selected"); ok {
				c.Value = optionValue(opt)
				return c
			}
		}
		if len(opts) > 0 {
			c.Value = optionValue(opts[0])
		}
	}
	return c
}

func hasValue(n *Node) bool {
	_, ok := n.Attr("value")
	return ok
}

func options(sel *Node) []*Node {
	var out []*Node
	sel.Walk(func(c *Node) bool {
		if c.Tag == "option" {
			out = append(out, c)
		}
		return true
	})
	return out
}

func optionValue(opt *Node) string {
	if v, ok := opt.Attr("value"); ok {
		return v
	}
	return opt.TextContent()
}
