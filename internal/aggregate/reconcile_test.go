package aggregate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/erduoya77/obsidian-kanban/internal/board"
)

const docA = "---\n" +
	"kanban-plugin: board\n" +
	"---\n" +
	"\n" +
	"## Inbox\n" +
	"\n" +
	"- [ ] alpha\n" +
	"- [ ] beta\n" +
	"\n" +
	"## Done\n" +
	"\n" +
	"- [x] omega\n" +
	"\n"

const docB = "---\n" +
	"kanban-plugin: board\n" +
	"---\n" +
	"\n" +
	"## Backlog\n" +
	"\n" +
	"- [ ] gamma\n" +
	"\n"

func scanFixture(t *testing.T) (*Scanner, *memStore, *board.Board) {
	t.Helper()
	store := newMemStore(map[string]string{
		"A.md": docA,
		"B.md": docB,
	})
	s := newTestScanner(store)
	t.Cleanup(s.Close)

	synthesized, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return s, store, synthesized
}

// laneByTitle finds an aggregated lane in an edited clone.
func laneByTitle(t *testing.T, b *board.Board, title string) *board.Lane {
	t.Helper()
	for i := range b.Lanes {
		if b.Lanes[i].Title == title {
			return &b.Lanes[i]
		}
	}
	t.Fatalf("no lane titled %q", title)
	return nil
}

func TestReconcileEdit(t *testing.T) {
	s, store, synthesized := scanFixture(t)

	edited := synthesized.Clone()
	inbox := laneByTitle(t, edited, "Inbox")
	inbox.Items[0].TitleRaw = "alpha edited"
	inbox.Items[0].Title = "alpha edited"

	rescanned, errs := s.Reconcile(context.Background(), edited)
	if len(errs) != 0 {
		t.Fatalf("Reconcile errors: %v", errs)
	}

	// Only A.md carries the edit; B.md round-trips byte-identical.
	if !strings.Contains(store.content("A.md"), "- [ ] alpha edited\n") {
		t.Errorf("A.md missing edit:\n%s", store.content("A.md"))
	}
	if store.content("B.md") != docB {
		t.Errorf("B.md changed:\n%s", store.content("B.md"))
	}

	got := laneByTitle(t, rescanned, "Inbox")
	if got.Items[0].TitleRaw != "alpha edited" {
		t.Errorf("rescan does not reflect edit: %q", got.Items[0].TitleRaw)
	}
}

func TestReconcileWritesOnlyEditedDocuments(t *testing.T) {
	s, store, synthesized := scanFixture(t)

	edited := synthesized.Clone()
	inbox := laneByTitle(t, edited, "Inbox")
	inbox.Items[0].TitleRaw = "alpha edited"
	inbox.Items[0].Title = "alpha edited"

	if _, errs := s.Reconcile(context.Background(), edited); len(errs) != 0 {
		t.Fatalf("Reconcile errors: %v", errs)
	}

	// An untouched document must not be rewritten, not even with
	// identical bytes.
	if got := store.writeCount("A.md"); got != 1 {
		t.Errorf("A.md writes: got %d, want 1", got)
	}
	if got := store.writeCount("B.md"); got != 0 {
		t.Errorf("B.md writes: got %d, want 0", got)
	}
}

func TestReconcileMoveWithinDocument(t *testing.T) {
	s, store, synthesized := scanFixture(t)

	// Relocate beta from Inbox to Done inside A.md.
	edited := synthesized.Clone()
	inbox := laneByTitle(t, edited, "Inbox")
	done := laneByTitle(t, edited, "Done")
	beta := inbox.Items[1]
	inbox.Items = inbox.Items[:1]
	done.Items = append(done.Items, beta)

	if _, errs := s.Reconcile(context.Background(), edited); len(errs) != 0 {
		t.Fatalf("Reconcile errors: %v", errs)
	}

	wantA := "---\n" +
		"kanban-plugin: board\n" +
		"---\n" +
		"\n" +
		"## Inbox\n" +
		"\n" +
		"- [ ] alpha\n" +
		"\n" +
		"## Done\n" +
		"\n" +
		"- [x] omega\n" +
		"- [ ] beta\n" +
		"\n"
	if got := store.content("A.md"); got != wantA {
		t.Errorf("A.md after move:\ngot:\n%s\nwant:\n%s", got, wantA)
	}
	if store.content("B.md") != docB {
		t.Error("B.md changed by a move inside A.md")
	}
}

func TestReconcileNewItem(t *testing.T) {
	s, store, synthesized := scanFixture(t)

	edited := synthesized.Clone()
	inbox := laneByTitle(t, edited, "Inbox")
	inbox.Items = append(inbox.Items, board.Item{
		ID:        "created-in-view",
		TitleRaw:  "delta",
		Title:     "delta",
		CheckChar: ' ',
	})

	if _, errs := s.Reconcile(context.Background(), edited); len(errs) != 0 {
		t.Fatalf("Reconcile errors: %v", errs)
	}
	if !strings.Contains(store.content("A.md"), "- [ ] delta\n") {
		t.Errorf("new item not persisted:\n%s", store.content("A.md"))
	}
}

func TestReconcileUntrackedOrigin(t *testing.T) {
	s, _, synthesized := scanFixture(t)

	edited := synthesized.Clone()
	edited.Lanes = append(edited.Lanes, board.Lane{
		ID:    LaneKey{Doc: "ghost.md", Lane: "x"}.String(),
		Title: "Phantom",
	})

	rescanned, errs := s.Reconcile(context.Background(), edited)
	if len(errs) != 1 {
		t.Fatalf("errors: got %v, want exactly one", errs)
	}
	var rerr *ReconciliationError
	if !errors.As(errs[0], &rerr) || rerr.Doc != "ghost.md" {
		t.Errorf("error: got %v", errs[0])
	}
	// The tracked documents still reconciled and rescanned.
	if rescanned == nil || len(rescanned.Lanes) != 3 {
		t.Errorf("rescanned board: %+v", rescanned)
	}
}

func TestReconcileRejectsPlainLaneID(t *testing.T) {
	s, _, synthesized := scanFixture(t)

	edited := synthesized.Clone()
	edited.Lanes[0].ID = "plain"

	_, errs := s.Reconcile(context.Background(), edited)
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "not a composite id") {
		t.Errorf("errors: got %v", errs)
	}
}
