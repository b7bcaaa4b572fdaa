package dom

import (
	"net/url"
	"strings"
	"sync"
)

// Document owns one element tree. All methods are safe for concurrent use;
// timers and transport completions mutate the tree from their own goroutines.
type Document struct {
	mu   sync.RWMutex
	url  string
	root *Node
	body *Node
}

// New returns an empty document (html > body) loaded from pageURL.
func New(pageURL string) *Document {
	root := NewElement("html", "", "")
	body := root.Append(NewElement("body", "", ""))
	return &Document{url: pageURL, root: root, body: body}
}

// URL returns the address the document was loaded from.
func (d *Document) URL() string {
	return d.url
}

// Resolve resolves ref against the document URL, the way a browser resolves
// an href or a form action. Unparsable input is returned unchanged.
func (d *Document) Resolve(ref string) string {
	base, err := url.Parse(d.url)
	if err != nil {
		return ref
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

// Exists reports whether an element with id is attached.
func (d *Document) Exists(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.root.find(id) != nil
}

// Attr returns an attribute of the element with id.
func (d *Document) Attr(id, name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := d.root.find(id)
	if n == nil {
		return "", false
	}
	return n.Attr(name)
}

// AppendChild attaches child under the element with parentID, or under body
// when parentID is empty. It returns false when the parent is not attached.
func (d *Document) AppendChild(parentID string, child *Node) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	parent := d.body
	if parentID != "" {
		parent = d.root.find(parentID)
	}
	if parent == nil {
		return false
	}
	child.detach()
	parent.Append(child)
	return true
}

// Remove detaches the element with id. It returns false when none is attached.
func (d *Document) Remove(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.root.find(id)
	if n == nil || n == d.body || n == d.root {
		return false
	}
	n.detach()
	return true
}

// AddClass appends class to the element with id.
func (d *Document) AddClass(id, class string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.root.find(id)
	if n == nil {
		return false
	}
	n.addClass(class)
	return true
}

// HasClass reports whether the element with id carries class.
func (d *Document) HasClass(id, class string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := d.root.find(id)
	return n != nil && n.HasClass(class)
}

// SetValue sets the current value of an input, textarea or select. For a
// checkbox the value is its checked state: "", "0", "false" and "off"
// uncheck it, anything else checks it.
func (d *Document) SetValue(id, value string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.root.find(id)
	if n == nil {
		return false
	}
	switch n.Tag {
	case "textarea":
		n.Children = nil
		n.Text = value
	case "select":
		matched := false
		for _, opt := range options(n) {
			delete(opt.Attrs, "selected")
			if !matched && optionValue(opt) == value {
				opt.SetAttr("selected", "")
				matched = true
			}
		}
		return matched
	default:
		if isCheckbox(n) {
			setChecked(n, checkedValue(value))
			break
		}
		n.SetAttr("value", value)
	}
	return true
}

// SetChecked toggles the checked state of a checkbox.
func (d *Document) SetChecked(id string, checked bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.root.find(id)
	if n == nil {
		return false
	}
	setChecked(n, checked)
	return true
}

func setChecked(n *Node, checked bool) {
	if checked {
		n.SetAttr("checked", "")
	} else {
		delete(n.Attrs, "checked")
	}
}

func isCheckbox(n *Node) bool {
	t, _ := n.Attr("type")
	return n.Tag == "input" && strings.EqualFold(t, "checkbox")
}

func checkedValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// Snapshot returns a deep copy of the element with id, or of body when id is
// empty. Renderers read snapshots so they never hold the document lock.
func (d *Document) Snapshot(id string) (*Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n := d.body
	if id != "" {
		n = d.root.find(id)
	}
	if n == nil {
		return nil, false
	}
	return n.clone(), true
}

// Query returns deep copies of every attached element matching pred, in
// document order.
func (d *Document) Query(pred func(*Node) bool) []*Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []*Node
	d.root.Walk(func(n *Node) bool {
		if pred(n) {
			out = append(out, n.clone())
		}
		return true
	})
	return out
}
