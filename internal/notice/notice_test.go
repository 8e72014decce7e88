package notice

import "testing"

// TestBoard tests posting, deduplication and dismissal.
func TestBoard(t *testing.T) {
	t.Parallel()

	b := NewBoard()
	first := b.Post(KindError, "fetch-all", "Failed to fetch all results.")
	again := b.Post(KindError, "fetch-all", "Failed to fetch all results.")
	if first != again {
		t.Errorf("expected duplicate post to reuse id %d, got %d", first, again)
	}

	second := b.Post(KindAlert, "delete-one", "Failed to delete result.")
	if b.Len() != 2 {
		t.Fatalf("expected 2 notices, got %d", b.Len())
	}

	if !b.Dismiss(first) {
		t.Error("expected dismiss to succeed")
	}
	if b.Dismiss(first) {
		t.Error("expected second dismiss to report false")
	}

	list := b.List()
	if len(list) != 1 || list[0].ID != second {
		t.Errorf("unexpected notices %+v", list)
	}

	b.DismissSource("delete-one")
	if b.Len() != 0 {
		t.Errorf("expected empty board, got %d", b.Len())
	}
}
