// Package codes holds the X12 005010 code tables shared by every generator and parser.
// Tables are read-only after package initialization and safe for concurrent use.
package codes

import "sort"

// Version identifies the code list revision these tables were taken from
const Version = "005010-2024.1"

// UnknownPrefix prefixes the label of any code a table does not recognize
const UnknownPrefix = "Unknown code: "

// Table is an immutable code → description lookup
type Table struct {
	name    string
	entries map[string]string
}

func newTable(name string, entries map[string]string) *Table {
	return &Table{name: name, entries: entries}
}

// Name returns the table's name
func (t *Table) Name() string {
	return t.name
}

// Label returns the description for code, or "Unknown code: <code>" when absent.
// Unknown codes are passed through verbatim so the raw signal is never lost.
func (t *Table) Label(code string) string {
	if d, ok := t.entries[code]; ok {
		return d
	}
	return UnknownPrefix + code
}

// Lookup returns the description and whether the code is known
func (t *Table) Lookup(code string) (string, bool) {
	d, ok := t.entries[code]
	return d, ok
}

// Known reports whether the table recognizes code
func (t *Table) Known(code string) bool {
	_, ok := t.entries[code]
	return ok
}

// Codes returns the table's codes in sorted order
func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.entries))
	for c := range t.entries {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// IsUnknownLabel reports whether a label is the fallback for an unrecognized code
func IsUnknownLabel(label string) bool {
	return len(label) >= len(UnknownPrefix) && label[:len(UnknownPrefix)] == UnknownPrefix
}
