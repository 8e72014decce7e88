// Package collection holds the in-memory result set shared by the
// fetch-all, batch-submit and delete operations.
package collection

import (
	"slices"
	"sync"

	"github.com/nao1215/filingctl/internal/model"
)

// Collection is an ordered set of results, unique by identifier.
// It is safe for concurrent use.
//
// Writers are expected to apply their own stale-write guard before calling
// Replace or Upsert; Collection itself only guarantees that each write is
// atomic and that identifiers stay unique.
type Collection struct {
	mu      sync.RWMutex
	results []model.Result
}

// New creates an empty Collection.
func New() *Collection {
	return &Collection{}
}

// Replace swaps the whole contents for results.
// Later duplicates of an identifier replace earlier ones in place.
func (c *Collection) Replace(results []model.Result) {
	deduped := dedupe(results)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = deduped
}

// Upsert inserts results, replacing any entry that has the same identifier.
// New identifiers are appended in the order given.
func (c *Collection) Upsert(results ...model.Result) {
	if len(results) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range results {
		if i := c.indexLocked(r.ID); i >= 0 {
			c.results[i] = r
			continue
		}
		c.results = append(c.results, r)
	}
}

// Remove deletes the result with the given identifier.
// It reports whether an entry was removed.
func (c *Collection) Remove(id model.ResultID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexLocked(id)
	if i < 0 {
		return false
	}
	c.results = slices.Delete(c.results, i, i+1)
	return true
}

// Clear removes every result.
func (c *Collection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = nil
}

// Get returns the result with the given identifier.
func (c *Collection) Get(id model.ResultID) (model.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexLocked(id); i >= 0 {
		return c.results[i], true
	}
	return model.Result{}, false
}

// Contains reports whether a result with the given identifier is present.
func (c *Collection) Contains(id model.ResultID) bool {
	_, ok := c.Get(id)
	return ok
}

// Len returns the number of results.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.results)
}

// Snapshot returns a copy of the results in order.
func (c *Collection) Snapshot() []model.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.results)
}

func (c *Collection) indexLocked(id model.ResultID) int {
	return slices.IndexFunc(c.results, func(r model.Result) bool {
		return r.ID == id
	})
}

func dedupe(results []model.Result) []model.Result {
	out := make([]model.Result, 0, len(results))
	seen := make(map[model.ResultID]int, len(results))
	for _, r := range results {
		if i, ok := seen[r.ID]; ok {
			out[i] = r
			continue
		}
		seen[r.ID] = len(out)
		out = append(out, r)
	}
	return out
}
