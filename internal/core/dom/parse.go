package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextTag is the tag given to text nodes.
const TextTag = "#text"

// Parse reads an HTML page served from pageURL into a Document.
func Parse(r io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := New(pageURL)
	body := findBody(root)
	if body == nil {
		return doc, nil
	}
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if n := convert(c); n != nil {
			doc.body.Append(n)
		}
	}
	return doc, nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func convert(h *html.Node) *Node {
	switch h.Type {
	case html.TextNode:
		if strings.TrimSpace(h.Data) == "" {
			return nil
		}
		return &Node{Tag: TextTag, Text: h.Data}
	case html.ElementNode:
		switch h.DataAtom {
		case atom.Script, atom.Style:
			return nil
		}
	default:
		return nil
	}

	n := &Node{Tag: strings.ToLower(h.Data), Attrs: make(map[string]string, len(h.Attr))}
	for _, a := range h.Attr {
		key := strings.ToLower(a.Key)
		switch key {
		case "id":
			n.ID = a.Val
		case "class":
			n.Class = a.Val
		}
		n.Attrs[key] = a.Val
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if child := convert(c); child != nil {
			n.Append(child)
		}
	}
	return n
}
