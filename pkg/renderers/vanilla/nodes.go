package vanilla

import (
	"bytes"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formbind/pkg/directive"
)

// parseTemplate parses a template into a document node. Full documents keep
// their html/head/body structure; fragments are parsed in body context and
// hung off an empty document so they render back as written.
func parseTemplate(src []byte) (*html.Node, error) {
	head := src
	if len(head) > 64 {
		head = head[:64]
	}
	lead := strings.ToLower(strings.TrimSpace(string(head)))
	if strings.HasPrefix(lead, "<!doctype") || strings.HasPrefix(lead, "<html") {
		return html.Parse(bytes.NewReader(src))
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(src), body)
	if err != nil {
		return nil, err
	}
	root := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

// cloneNode deep copies n into a detached tree.
func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(cloneNode(child))
	}
	return c
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// takeAttr returns and removes key.
func takeAttr(n *html.Node, key string) (string, bool) {
	value, ok := getAttr(n, key)
	if ok {
		removeAttr(n, key)
	}
	return value, ok
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && strings.EqualFold(n.Attr[i].Key, key) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(key), Val: value})
}

func removeAttr(n *html.Node, key string) {
	n.Attr = slices.DeleteFunc(n.Attr, func(attr html.Attribute) bool {
		return attr.Namespace == "" && strings.EqualFold(attr.Key, key)
	})
}

// snapshot copies the element view handed to directive handlers.
func snapshot(n *html.Node) *directive.Element {
	attrs := make([]directive.Attribute, 0, len(n.Attr))
	for _, attr := range n.Attr {
		if attr.Namespace != "" {
			continue
		}
		attrs = append(attrs, directive.Attribute{Key: attr.Key, Val: attr.Val})
	}
	return directive.NewElement(n.Data, attrs...)
}

func setText(n *html.Node, text string) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

func appendClass(existing, class string) string {
	existing = strings.TrimSpace(existing)
	class = strings.TrimSpace(class)
	switch {
	case class == "":
		return existing
	case existing == "":
		return class
	}
	return existing + " " + class
}

// unwrap replaces n with its children.
func unwrap(n *html.Node) {
	parent := n.Parent
	for n.FirstChild != nil {
		child := n.FirstChild
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
	}
	parent.RemoveChild(n)
}

func hasNamedControl(n *html.Node, name string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if v, ok := getAttr(c, "name"); ok && v == name {
			return true
		}
		if hasNamedControl(c, name) {
			return true
		}
	}
	return false
}

func hiddenInput(name, value string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "input",
		DataAtom: atom.Input,
		Attr: []html.Attribute{
			{Key: "type", Val: "hidden"},
			{Key: "name", Val: name},
			{Key: "value", Val: value},
		},
	}
}
