package model

import "strings"

// Field is a single physical header field. The name keeps its original
// casing so a table can be serialized back out byte-faithfully.
type Field struct {
	Name  string
	Value string
}

// HeaderTable is an ordered multimap of header fields. Lookups are
// case-insensitive, insertion order across distinct names is preserved, and
// a name occurring N times in the source keeps all N values in source order.
type HeaderTable struct {
	fields []Field
}

func NewHeaderTable() *HeaderTable {
	return &HeaderTable{}
}

// Add appends a field, preserving the given name casing.
func (t *HeaderTable) Add(name, value string) {
	t.fields = append(t.fields, Field{Name: name, Value: value})
}

// Get returns the first value for name, or "" when absent.
func (t *HeaderTable) Get(name string) string {
	key := strings.ToLower(name)
	for _, f := range t.fields {
		if strings.ToLower(f.Name) == key {
			return f.Value
		}
	}
	return ""
}

// GetAll returns every value for name in source order.
func (t *HeaderTable) GetAll(name string) []string {
	key := strings.ToLower(name)
	var values []string
	for _, f := range t.fields {
		if strings.ToLower(f.Name) == key {
			values = append(values, f.Value)
		}
	}
	return values
}

func (t *HeaderTable) Has(name string) bool {
	key := strings.ToLower(name)
	for _, f := range t.fields {
		if strings.ToLower(f.Name) == key {
			return true
		}
	}
	return false
}

// Set replaces every occurrence of name with a single field holding value.
// The replacement keeps the position and casing of the first occurrence;
// when the name is absent the field is appended.
func (t *HeaderTable) Set(name, value string) {
	key := strings.ToLower(name)
	kept := t.fields[:0]
	replaced := false
	for _, f := range t.fields {
		if strings.ToLower(f.Name) == key {
			if !replaced {
				kept = append(kept, Field{Name: f.Name, Value: value})
				replaced = true
			}
			continue
		}
		kept = append(kept, f)
	}
	t.fields = kept
	if !replaced {
		t.fields = append(t.fields, Field{Name: name, Value: value})
	}
}

// Fields returns the fields in source order. The slice is a copy; mutating
// it does not affect the table.
func (t *HeaderTable) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

func (t *HeaderTable) Len() int {
	return len(t.fields)
}

// Clone returns an independent copy, used by the exporter so overlay edits
// never touch the parsed message.
func (t *HeaderTable) Clone() *HeaderTable {
	c := &HeaderTable{fields: make([]Field, len(t.fields))}
	copy(c.fields, t.fields)
	return c
}
