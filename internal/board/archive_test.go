package board

import (
	"testing"
	"time"

	"github.com/erduoya77/obsidian-kanban/internal/settings"
)

func archiveTestBoard() *Board {
	return &Board{
		ID: "doc.md",
		Lanes: []Lane{
			{ID: "l1", Title: "Todo", Items: []Item{
				{ID: "a", TitleRaw: "keep me", Title: "keep me", CheckChar: ' '},
				{ID: "b", TitleRaw: "done one", Title: "done one", CheckChar: 'x', Checked: true},
			}},
			{ID: "l2", Title: "Doing", Items: []Item{
				{ID: "c", TitleRaw: "done two", Title: "done two", CheckChar: 'x', Checked: true},
			}},
		},
		DoneChar: 'x',
	}
}

func docResolver(t *testing.T, footerJSON string) *settings.Resolver {
	t.Helper()
	r, err := settings.NewResolver(nil).WithDocument(footerJSON)
	if err != nil {
		t.Fatalf("WithDocument failed: %v", err)
	}
	return r
}

func TestArchiveCompleted(t *testing.T) {
	b := archiveTestBoard()
	r := settings.NewResolver(nil)
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	out := ArchiveCompleted(b, r, now)

	if len(out.Lanes[0].Items) != 1 || out.Lanes[0].Items[0].ID != "a" {
		t.Errorf("todo lane after archive: %+v", out.Lanes[0].Items)
	}
	if len(out.Lanes[1].Items) != 0 {
		t.Errorf("doing lane after archive: %+v", out.Lanes[1].Items)
	}
	if len(out.Archive) != 2 || out.Archive[0].ID != "b" || out.Archive[1].ID != "c" {
		t.Errorf("archive: %+v", out.Archive)
	}
	// Titles are untouched without archive-with-date.
	if out.Archive[0].TitleRaw != "done one" {
		t.Errorf("archived title: got %q", out.Archive[0].TitleRaw)
	}

	// The input board is never mutated.
	if len(b.Lanes[0].Items) != 2 || len(b.Archive) != 0 {
		t.Error("input board mutated")
	}
}

func TestArchiveCompletedWithDate(t *testing.T) {
	b := archiveTestBoard()
	r := docResolver(t, `{"archive-with-date":true,"archive-date-format":"2006-01-02"}`)
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	out := ArchiveCompleted(b, r, now)

	if got := out.Archive[0].TitleRaw; got != "2026-08-23 done one" {
		t.Errorf("dated raw title: got %q", got)
	}
	if got := out.Archive[0].Title; got != "2026-08-23 done one" {
		t.Errorf("dated display title: got %q", got)
	}
}

func TestArchiveTrim(t *testing.T) {
	b := archiveTestBoard()
	b.Archive = []Item{{ID: "ancient", TitleRaw: "ancient"}}
	r := docResolver(t, `{"max-archive-size":2}`)

	out := ArchiveCompleted(b, r, time.Now())

	if len(out.Archive) != 2 {
		t.Fatalf("archive: got %d entries, want 2", len(out.Archive))
	}
	// The newest entries survive.
	if out.Archive[0].ID != "b" || out.Archive[1].ID != "c" {
		t.Errorf("archive after trim: %+v", out.Archive)
	}
}

func TestArchiveItem(t *testing.T) {
	b := archiveTestBoard()
	r := settings.NewResolver(nil)

	out := ArchiveItem(b, 0, 0, r, time.Now())
	if len(out.Archive) != 1 || out.Archive[0].ID != "a" {
		t.Errorf("archive: %+v", out.Archive)
	}
	if len(out.Lanes[0].Items) != 1 || out.Lanes[0].Items[0].ID != "b" {
		t.Errorf("lane after single archive: %+v", out.Lanes[0].Items)
	}

	// Out-of-range indices are a no-op on the copy.
	out = ArchiveItem(b, 5, 0, r, time.Now())
	if len(out.Archive) != 0 {
		t.Errorf("out-of-range lane archived: %+v", out.Archive)
	}
	out = ArchiveItem(b, 0, 9, r, time.Now())
	if len(out.Archive) != 0 {
		t.Errorf("out-of-range item archived: %+v", out.Archive)
	}
}
