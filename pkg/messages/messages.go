// Package messages holds validation feedback for a single render. The Messages
// value is exported to templates under the reserved name "errors"; its
// Exists, Part and All methods are what generated directives call.
package messages

import (
	"slices"
	"strings"
)

// GlobalProperty collects messages that do not belong to a specific field.
const GlobalProperty = "_global"

// Message is one validation message bound to a field.
type Message struct {
	Property string
	Key      string
	Args     []any
	// Message is the display text. It stays empty until Localize runs for
	// keyed messages.
	Message string
}

// String returns the display text, or the key when the message has not been
// localized.
func (m Message) String() string {
	if m.Message != "" {
		return m.Message
	}
	return m.Key
}

// Holder is the read side consumed by templates and directive handlers.
type Holder interface {
	HasErrorFor(property string) bool
	MessagesFor(property string) []Message
	AllMessages() []Message
}

// Messages is an ordered property to message list mapping. It is owned by a
// single render and is not safe for concurrent mutation.
type Messages struct {
	order      []string
	byProperty map[string][]Message
}

var _ Holder = (*Messages)(nil)

// New returns an empty message set.
func New() *Messages {
	return &Messages{byProperty: make(map[string][]Message)}
}

// Add records a keyed message that Localize resolves later.
func (m *Messages) Add(property, key string, args ...any) {
	m.append(Message{Property: normalizeProperty(property), Key: strings.TrimSpace(key), Args: args})
}

// AddText records a message with literal display text. Markup is stripped.
func (m *Messages) AddText(property, text string) {
	cleaned := sanitize(text)
	if cleaned == "" {
		return
	}
	m.append(Message{Property: normalizeProperty(property), Message: cleaned})
}

func (m *Messages) append(msg Message) {
	if m.byProperty == nil {
		m.byProperty = make(map[string][]Message)
	}
	existing, ok := m.byProperty[msg.Property]
	if !ok {
		m.order = append(m.order, msg.Property)
	}
	for _, e := range existing {
		if e.Key == msg.Key && e.Message == msg.Message {
			return
		}
	}
	m.byProperty[msg.Property] = append(existing, msg)
}

// Exists reports whether property has at least one message.
func (m *Messages) Exists(property string) bool {
	return m.HasErrorFor(property)
}

// HasErrorFor implements Holder.
func (m *Messages) HasErrorFor(property string) bool {
	if m == nil {
		return false
	}
	return len(m.byProperty[normalizeProperty(property)]) > 0
}

// ExistsKey reports whether property carries a message with the supplied key.
func (m *Messages) ExistsKey(property, key string) bool {
	if m == nil {
		return false
	}
	return slices.ContainsFunc(m.byProperty[normalizeProperty(property)], func(msg Message) bool {
		return msg.Key == key
	})
}

// Part returns the messages of a single property.
func (m *Messages) Part(property string) []Message {
	return m.MessagesFor(property)
}

// MessagesFor implements Holder.
func (m *Messages) MessagesFor(property string) []Message {
	if m == nil {
		return nil
	}
	return slices.Clone(m.byProperty[normalizeProperty(property)])
}

// All returns every message in insertion order of their properties.
func (m *Messages) All() []Message {
	return m.AllMessages()
}

// AllMessages implements Holder.
func (m *Messages) AllMessages() []Message {
	if m == nil {
		return nil
	}
	var out []Message
	for _, property := range m.order {
		out = append(out, m.byProperty[property]...)
	}
	return out
}

// Properties lists properties holding messages, in insertion order.
func (m *Messages) Properties() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.order)
}

// Empty reports whether no message was recorded.
func (m *Messages) Empty() bool {
	return m.Size() == 0
}

// Size returns the total number of messages.
func (m *Messages) Size() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, list := range m.byProperty {
		n += len(list)
	}
	return n
}

// SizeOf returns the number of messages recorded for property.
func (m *Messages) SizeOf(property string) int {
	if m == nil {
		return 0
	}
	return len(m.byProperty[normalizeProperty(property)])
}

func normalizeProperty(property string) string {
	trimmed := strings.TrimSpace(property)
	if trimmed == "" {
		return GlobalProperty
	}
	return trimmed
}
