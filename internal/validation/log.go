// Package validation accumulates validation failure messages for a single
// translation call.
package validation

import (
	"strings"
	"unicode"
)

// Log is an ordered, append-only list of validation messages.
// The zero value is ready to use. A Log is not safe for concurrent use;
// each translation call owns its own.
type Log struct {
	messages []string
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// Add appends message unless it is empty according to IsEmpty.
func (l *Log) Add(message string) {
	if IsEmpty(message) {
		return
	}
	l.messages = append(l.messages, message)
}

// All returns a copy of the messages in insertion order.
func (l *Log) All() []string {
	out := make([]string, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len reports the number of recorded messages.
func (l *Log) Len() int {
	return len(l.messages)
}

// Joined returns the messages separated by newlines.
func (l *Log) Joined() (string, bool) {
	if len(l.messages) == 0 {
		return "", false
	}
	return strings.Join(l.messages, "\n"), true
}

// First returns the earliest message.
func (l *Log) First() (string, bool) {
	if len(l.messages) == 0 {
		return "", false
	}
	return l.messages[0], true
}

// Last returns the most recent message.
func (l *Log) Last() (string, bool) {
	if len(l.messages) == 0 {
		return "", false
	}
	return l.messages[len(l.messages)-1], true
}

// emptyReplacer strips the characters that never count as content.
var emptyReplacer = strings.NewReplacer(" ", "", `"`, "", "\n", "")

// IsEmpty reports whether s carries no content: after trimming control and
// space characters from both ends and removing every space, double quote and
// newline, nothing is left.
func IsEmpty(s string) bool {
	trimmed := strings.TrimFunc(s, func(r rune) bool {
		return r <= ' ' || unicode.IsControl(r)
	})
	return emptyReplacer.Replace(trimmed) == ""
}
