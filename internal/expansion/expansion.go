// Package expansion tracks which result rows a user has expanded.
//
// State is keyed by table and result identifier, never by fetch, so it
// survives any number of refreshes that return the same identifiers.
package expansion

import (
	"sync"

	"github.com/nao1215/filingctl/internal/model"
)

// Table names a view whose rows can be expanded independently.
type Table string

// Tables rendered by the client.
const (
	// TableSingle is the output panel of a single classification.
	TableSingle Table = "single"

	// TableBatch holds the rows of the last batch classification.
	TableBatch Table = "batch"

	// TableLookupID is the output panel of a lookup by identifier.
	TableLookupID Table = "lookup-id"

	// TableLookupURL holds the rows of the last lookup by URL.
	TableLookupURL Table = "lookup-url"

	// TableAll holds the rows of the polled result list.
	TableAll Table = "all"
)

// defaultExpanded is the state of rows the user never toggled.
// Single-output panels start shown, row tables start collapsed.
var defaultExpanded = map[Table]bool{
	TableSingle:    true,
	TableLookupID:  true,
	TableBatch:     false,
	TableLookupURL: false,
	TableAll:       false,
}

// Default returns the expansion state of an untoggled row in table.
// Unknown tables default to collapsed.
func Default(table Table) bool {
	return defaultExpanded[table]
}

type key struct {
	table Table
	id    model.ResultID
}

// Store holds per-row expansion state for every table.
// Entries are created lazily on first toggle. Store is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state map[key]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{state: make(map[key]bool)}
}

// Expanded reports whether the row id in table is expanded.
func (s *Store) Expanded(table Table, id model.ResultID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.state[key{table, id}]; ok {
		return v
	}
	return Default(table)
}

// Toggle flips the row id in table and returns its new state.
func (s *Store) Toggle(table Table, id model.ResultID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{table, id}
	current, ok := s.state[k]
	if !ok {
		current = Default(table)
	}
	s.state[k] = !current
	return !current
}

// Set forces the row id in table to the given state.
func (s *Store) Set(table Table, id model.ResultID, expanded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state[key{table, id}] = expanded
}

// Len returns the number of rows toggled at least once in table.
func (s *Store) Len(table Table) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for k := range s.state {
		if k.table == table {
			n++
		}
	}
	return n
}

// View is a read-only view of one table of a Store.
type View struct {
	store *Store
	table Table
}

// Table returns a view of table. A nil Store yields a view where every row
// has the table's default state.
func (s *Store) Table(table Table) View {
	return View{store: s, table: table}
}

// Expanded reports whether the row id is expanded.
func (v View) Expanded(id model.ResultID) bool {
	if v.store == nil {
		return Default(v.table)
	}
	return v.store.Expanded(v.table, id)
}

// Name returns the table name.
func (v View) Name() Table {
	return v.table
}
