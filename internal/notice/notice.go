// Package notice keeps the dismissible, non-fatal failure messages shown to
// the user. A failure in one operation never affects another; it becomes a
// notice instead.
package notice

import (
	"slices"
	"sync"
	"time"
)

// Kind groups notices by how they were raised.
type Kind string

const (
	// KindError is a persistent operation failure, such as a failed refresh.
	KindError Kind = "error"

	// KindAlert is a failure raised by a direct user action, such as a
	// row delete.
	KindAlert Kind = "alert"

	// KindInfo is an informational message.
	KindInfo Kind = "info"
)

// Notice is one message on the board.
type Notice struct {
	ID      int       `json:"id"`
	Kind    Kind      `json:"kind"`
	Source  string    `json:"source,omitempty"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Board holds notices until they are dismissed. It is safe for concurrent use.
type Board struct {
	mu      sync.Mutex
	notices []Notice
	nextID  int
	now     func() time.Time
}

// NewBoard creates an empty Board.
func NewBoard() *Board {
	return &Board{now: time.Now}
}

// Post adds a notice and returns its identifier. A notice with the same
// source and message as an undismissed one is not duplicated; the existing
// identifier is returned instead.
func (b *Board) Post(kind Kind, source, message string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.notices {
		if n.Source == source && n.Message == message && n.Kind == kind {
			return n.ID
		}
	}

	b.nextID++
	b.notices = append(b.notices, Notice{
		ID:      b.nextID,
		Kind:    kind,
		Source:  source,
		Message: message,
		At:      b.now(),
	})
	return b.nextID
}

// Dismiss removes the notice with id. It reports whether one was removed.
func (b *Board) Dismiss(id int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.notices, func(n Notice) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	b.notices = slices.Delete(b.notices, i, i+1)
	return true
}

// DismissSource removes every notice raised by source.
func (b *Board) DismissSource(source string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notices = slices.DeleteFunc(b.notices, func(n Notice) bool { return n.Source == source })
}

// List returns the current notices, oldest first.
func (b *Board) List() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.notices)
}

// Len returns the number of current notices.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.notices)
}
