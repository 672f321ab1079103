package knowledge

import "github.com/jeklund/prisonlight/pkg/core"

// Table is a fixed-size membership table over agent ids. Marks are
// monotonic: once an id is marked it stays marked for the lifetime of
// the table. A Table belongs to a single trial and is not safe for
// concurrent use.
type Table struct {
	seen  []bool
	count uint32
}

func NewTable(size int) *Table {
	return &Table{
		seen: make([]bool, size),
	}
}

// Mark records id as known. Marking an already-known id is a no-op.
func (t *Table) Mark(id core.AgentID) {
	if !t.seen[id] {
		t.seen[id] = true
		t.count++
	}
}

// Knows reports whether id has been marked.
func (t *Table) Knows(id core.AgentID) bool {
	return t.seen[id]
}

// Count returns the number of marked ids.
func (t *Table) Count() uint32 {
	return t.count
}

// Size returns the table capacity, i.e. the population size.
func (t *Table) Size() int {
	return len(t.seen)
}

// Complete reports whether every id in the table has been marked.
func (t *Table) Complete() bool {
	return t.count == uint32(len(t.seen))
}
