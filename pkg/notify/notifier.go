// Package notify delivers human-readable operational notifications. Messages
// are assembled from named sections and only serialized to the transport's
// text format at the channel boundary.
package notify

import "context"

// Severity controls how prominently a message is rendered.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Field is one labeled value inside a section.
type Field struct {
	Name  string
	Value string
}

// Section is a named group of fields, e.g. "Resource" or "Trigger Context".
type Section struct {
	Heading string
	Fields  []Field
}

// Message is a structured notification. Empty sections and empty field values
// are dropped at render time so builders can add optional context freely.
type Message struct {
	Title    string
	Severity Severity
	Body     string // optional free-form line under the title
	Sections []Section
}

// NewMessage creates a message with the given title and severity.
func NewMessage(title string, severity Severity) *Message {
	return &Message{Title: title, Severity: severity}
}

// AddSection appends a section built from name/value pairs, skipping empty
// values, and returns the message for chaining.
func (m *Message) AddSection(heading string, fields ...Field) *Message {
	kept := make([]Field, 0, len(fields))
	for _, f := range fields {
		if f.Value != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) > 0 {
		m.Sections = append(m.Sections, Section{Heading: heading, Fields: kept})
	}
	return m
}

// Notifier sends a message to the configured channel.
type Notifier interface {
	Send(ctx context.Context, msg *Message) error
}
