package board

import (
	"testing"

	"github.com/erduoya77/obsidian-kanban/internal/linkindex"
	"github.com/erduoya77/obsidian-kanban/internal/settings"
)

const canonicalDoc = "---\n" +
	"kanban-plugin: board\n" +
	"---\n" +
	"\n" +
	"## Todo\n" +
	"\n" +
	"- [ ] Buy milk #errand\n" +
	"- [/] Write report\n" +
	"  second line\n" +
	"\n" +
	"## Done\n" +
	"\n" +
	"**Complete**\n" +
	"\n" +
	"- [x] Ship it ^blk-1\n" +
	"\n" +
	"***\n" +
	"\n" +
	"## Archive\n" +
	"\n" +
	"- [x] Old task\n" +
	"\n" +
	"%% kanban:settings\n" +
	"```\n" +
	"{\"kanban-plugin\":\"board\"}\n" +
	"```\n" +
	"%%\n"

func TestRoundTrip(t *testing.T) {
	b := buildBoard(t, canonicalDoc, nil)

	out, err := Serialize(b)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if out != canonicalDoc {
		t.Errorf("serialized form differs from canonical input:\ngot:\n%s\nwant:\n%s", out, canonicalDoc)
	}

	// Reparsing the output and serializing again is byte-identical.
	again := buildBoard(t, out, nil)
	out2, err := Serialize(again)
	if err != nil {
		t.Fatalf("second Serialize failed: %v", err)
	}
	if out2 != out {
		t.Errorf("reserialize not byte-identical:\nfirst:\n%s\nsecond:\n%s", out, out2)
	}

	// Structural equality on the governed fields.
	if len(again.Lanes) != len(b.Lanes) {
		t.Fatalf("lanes: got %d, want %d", len(again.Lanes), len(b.Lanes))
	}
	for i := range b.Lanes {
		if again.Lanes[i].Title != b.Lanes[i].Title {
			t.Errorf("lane %d title: got %q, want %q", i, again.Lanes[i].Title, b.Lanes[i].Title)
		}
		if again.Lanes[i].CompleteMarker != b.Lanes[i].CompleteMarker {
			t.Errorf("lane %d complete marker differs", i)
		}
		if len(again.Lanes[i].Items) != len(b.Lanes[i].Items) {
			t.Fatalf("lane %d items: got %d, want %d", i, len(again.Lanes[i].Items), len(b.Lanes[i].Items))
		}
		for j := range b.Lanes[i].Items {
			got, want := again.Lanes[i].Items[j], b.Lanes[i].Items[j]
			if got.TitleRaw != want.TitleRaw {
				t.Errorf("item %d/%d raw title: got %q, want %q", i, j, got.TitleRaw, want.TitleRaw)
			}
			if got.CheckChar != want.CheckChar {
				t.Errorf("item %d/%d check char: got %q, want %q", i, j, got.CheckChar, want.CheckChar)
			}
			if got.BlockID != want.BlockID {
				t.Errorf("item %d/%d block id: got %q, want %q", i, j, got.BlockID, want.BlockID)
			}
		}
	}
	if len(again.Archive) != len(b.Archive) {
		t.Errorf("archive: got %d, want %d", len(again.Archive), len(b.Archive))
	}
}

func TestSerializeBareBoard(t *testing.T) {
	b := buildBoard(t, "## A\n\n- [ ] x\n", nil)
	out, err := Serialize(b)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := "## A\n\n- [ ] x\n\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSerializeEmptyCheckbox(t *testing.T) {
	b := buildBoard(t, "## A\n\n- [ ]\n", nil)
	out, err := Serialize(b)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := "## A\n\n- [ ]\n\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSerializeCanonicalizesFooter(t *testing.T) {
	// Footer keys come back sorted regardless of input order.
	source := "## A\n\n- [ ] x\n\n" +
		"%% kanban:settings\n```\n{\"move-tags\":true,\"kanban-plugin\":\"board\"}\n```\n%%\n"
	b := buildBoard(t, source, nil)
	out, err := Serialize(b)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	want := "## A\n\n- [ ] x\n\n" +
		"%% kanban:settings\n```\n{\"kanban-plugin\":\"board\",\"move-tags\":true}\n```\n%%\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestSerializePreservesFrontmatterBytes(t *testing.T) {
	source := "---\n" +
		"kanban-plugin: board\n" +
		"tags:\n" +
		"  - project\n" +
		"---\n" +
		"\n" +
		"## A\n" +
		"\n" +
		"- [ ] x\n" +
		"\n"
	r := settings.NewResolver(nil)
	b, err := NewBuilder(r, linkindex.Nop{}).Build(mustParse(t, source))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	out, err := Serialize(b)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if out != source {
		t.Errorf("frontmatter not preserved byte for byte:\ngot:\n%s\nwant:\n%s", out, source)
	}
}
