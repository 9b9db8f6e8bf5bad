package scanbuf

import "sync"

// Target is an input the scanner accumulates keystrokes for.
type Target interface {
	// ID identifies the target. Keystrokes for equal IDs share a buffer.
	ID() string

	// Value returns the current field content, used to resolve pastes.
	Value() string

	// Clear empties the field content.
	Clear()
}

// Field is an in-memory Target safe for concurrent use.
type Field struct {
	name string

	mu    sync.Mutex
	value string
}

// NewField creates an empty field.
func NewField(name string) *Field {
	return &Field{name: name}
}

// ID implements Target.ID.
func (f *Field) ID() string { return f.name }

// Value implements Target.Value.
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Set replaces the field content.
func (f *Field) Set(v string) {
	f.mu.Lock()
	f.value = v
	f.mu.Unlock()
}

// Clear implements Target.Clear.
func (f *Field) Clear() {
	f.Set("")
}
