package directive

import "strings"

// Attribute is a key/value pair on an element.
type Attribute struct {
	Key string
	Val string
}

// Element is the snapshot of a template element handed to handlers.
// Attribute keys compare case-insensitively because HTML parsers lowercase
// them.
type Element struct {
	Tag   string
	Attrs []Attribute
}

// NewElement builds an element snapshot.
func NewElement(tag string, attrs ...Attribute) *Element {
	return &Element{Tag: strings.ToLower(tag), Attrs: attrs}
}

// Get returns the value of key.
func (e *Element) Get(key string) (string, bool) {
	if e == nil {
		return "", false
	}
	for _, attr := range e.Attrs {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val, true
		}
	}
	return "", false
}

// Has reports whether key is present.
func (e *Element) Has(key string) bool {
	_, ok := e.Get(key)
	return ok
}
