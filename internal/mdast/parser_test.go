package mdast

import (
	"errors"
	"strings"
	"testing"
)

func TestFrontmatter(t *testing.T) {
	doc, err := Parse("---\ntitle: Test\nkanban-plugin: board\n---\n\n## A\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Frontmatter.IsZero() {
		t.Fatal("expected frontmatter")
	}
	if got := doc.Frontmatter.String("title"); got != "Test" {
		t.Errorf("title: got %q, want %q", got, "Test")
	}
	if !doc.Frontmatter.Has("kanban-plugin") {
		t.Error("expected kanban-plugin key")
	}
	if doc.Frontmatter.Raw != "title: Test\nkanban-plugin: board\n" {
		t.Errorf("raw: got %q", doc.Frontmatter.Raw)
	}
}

func TestFrontmatterAbsent(t *testing.T) {
	doc, err := Parse("## A\n\n- [ ] item\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !doc.Frontmatter.IsZero() {
		t.Errorf("expected no frontmatter, got %q", doc.Frontmatter.Raw)
	}
}

func TestFrontmatterUnterminated(t *testing.T) {
	inputs := []string{
		"---\ntitle: Test\n",
		"---\n",
		"---",
	}
	for _, input := range inputs {
		_, err := Parse(input, Options{Path: "bad.md"})
		if err == nil {
			t.Fatalf("Parse(%q): expected error", input)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q): got %T, want *ParseError", input, err)
		}
		if perr.Path != "bad.md" {
			t.Errorf("Path: got %q, want bad.md", perr.Path)
		}
	}
}

func TestSettingsFooter(t *testing.T) {
	input := "## A\n\n- [ ] x\n\n%% kanban:settings\n```\n{\"move-tags\":true}\n```\n%%\n"
	doc, err := Parse(input, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Settings == nil {
		t.Fatal("expected settings block")
	}
	if doc.Settings.JSON != "{\"move-tags\":true}" {
		t.Errorf("JSON: got %q", doc.Settings.JSON)
	}
	// The footer must not leak into the body.
	for _, n := range doc.Body.Children() {
		if h, ok := n.(*Heading); ok && strings.Contains(h.Text, "kanban:settings") {
			t.Error("settings marker parsed as body content")
		}
	}
}

func TestSettingsFooterUnterminated(t *testing.T) {
	input := "## A\n\n%% kanban:settings\n```\n{\"a\":1}\n"
	_, err := Parse(input, Options{})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("got %T (%v), want *ParseError", err, err)
	}
}

func TestBodyBlocks(t *testing.T) {
	input := "## Todo\n\nplain paragraph\n\n---\n\n```go\ncode\n```\n\n- [ ] a\n- [x] b\n"
	doc, err := Parse(input, Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	kinds := make([]Kind, 0)
	for _, n := range doc.Body.Children() {
		kinds = append(kinds, n.Kind())
	}
	want := []Kind{KindHeading, KindParagraph, KindThematicBreak, KindCodeBlock, KindList}
	if len(kinds) != len(want) {
		t.Fatalf("top-level kinds: got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("kind[%d]: got %s, want %s", i, kinds[i], want[i])
		}
	}

	list := doc.Body.Children()[4].(*List)
	if len(list.Children()) != 2 {
		t.Fatalf("list items: got %d, want 2", len(list.Children()))
	}
	first := list.Children()[0].(*ListItem)
	if !first.Checkbox || first.CheckChar != ' ' {
		t.Errorf("first item: checkbox=%v char=%q", first.Checkbox, first.CheckChar)
	}
	second := list.Children()[1].(*ListItem)
	if second.CheckChar != 'x' {
		t.Errorf("second item char: got %q, want x", second.CheckChar)
	}
}

func TestContainerChildrenNeverNil(t *testing.T) {
	doc, err := Parse("## Empty\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	count := 0
	Walk(doc.Body, func(n Node) bool {
		if c, ok := n.(Container); ok {
			if c.Children() == nil {
				t.Errorf("%s: nil children", n.Kind())
			}
		}
		count++
		return true
	})
	if count == 0 {
		t.Error("walk visited nothing")
	}
	// Construction with a nil slice still yields a concrete sequence.
	h := NewHeading(2, "x", nil, Span{})
	if h.Children() == nil {
		t.Error("NewHeading: nil children")
	}
}

func TestInlineTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind Kind
		want string
	}{
		{"tag", "- [ ] buy milk #errand\n", KindTag, "#errand"},
		{"tag with slash", "- [ ] work #proj/infra now\n", KindTag, "#proj/infra"},
		{"date", "- [ ] ship @{2026-08-01}\n", KindDate, "2026-08-01"},
		{"date link", "- [ ] ship @[[2026-08-01]]\n", KindDateLink, "2026-08-01"},
		{"time", "- [ ] standup @@{09:30}\n", KindTime, "09:30"},
		{"wikilink", "- [ ] read [[Some Note]]\n", KindWikilink, "Some Note"},
		{"embed", "- [ ] see ![[diagram.png]]\n", KindEmbedWikilink, "diagram.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.text, Options{})
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			var found Node
			Walk(doc.Body, func(n Node) bool {
				if n.Kind() == tt.kind {
					found = n
				}
				return true
			})
			if found == nil {
				t.Fatalf("no %s token found", tt.kind)
			}
			var got string
			switch n := found.(type) {
			case *Tag:
				got = n.Value
			case *Date:
				got = n.Value
			case *DateLink:
				got = n.Value
			case *Time:
				got = n.Value
			case *Wikilink:
				got = n.Target
			case *EmbedWikilink:
				got = n.Target
			}
			if got != tt.want {
				t.Errorf("value: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInlineTagBoundary(t *testing.T) {
	doc, err := Parse("- [ ] c#not a tag but #yes\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var tags []string
	Walk(doc.Body, func(n Node) bool {
		if tag, ok := n.(*Tag); ok {
			tags = append(tags, tag.Value)
		}
		return true
	})
	if len(tags) != 1 || tags[0] != "#yes" {
		t.Errorf("tags: got %v, want [#yes]", tags)
	}
}

func TestWikilinkAlias(t *testing.T) {
	doc, err := Parse("- [ ] read [[note|My Note]]\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var link *Wikilink
	Walk(doc.Body, func(n Node) bool {
		if wl, ok := n.(*Wikilink); ok {
			link = wl
		}
		return true
	})
	if link == nil {
		t.Fatal("no wikilink found")
	}
	if link.Target != "note" || link.Alias != "My Note" {
		t.Errorf("got target=%q alias=%q", link.Target, link.Alias)
	}
}

func TestBlockID(t *testing.T) {
	doc, err := Parse("- [ ] task text ^abc-123\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	list := doc.Body.Children()[0].(*List)
	item := list.Children()[0].(*ListItem)

	var blockID *BlockID
	var para *Paragraph
	for _, child := range item.Children() {
		switch n := child.(type) {
		case *BlockID:
			blockID = n
		case *Paragraph:
			para = n
		}
	}
	if blockID == nil {
		t.Fatal("no block id child")
	}
	if blockID.Value != "abc-123" {
		t.Errorf("block id: got %q, want abc-123", blockID.Value)
	}
	// The paragraph boundary excludes the block id and its separator.
	text := doc.Source[para.Span().Start:para.Span().End]
	if text != "task text" {
		t.Errorf("paragraph slice: got %q, want %q", text, "task text")
	}
}

func TestBlockIDWithoutTitle(t *testing.T) {
	doc, err := Parse("- [ ] ^abc\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	list := doc.Body.Children()[0].(*List)
	item := list.Children()[0].(*ListItem)

	var blockID *BlockID
	var para *Paragraph
	for _, child := range item.Children() {
		switch n := child.(type) {
		case *BlockID:
			blockID = n
		case *Paragraph:
			para = n
		}
	}
	if blockID == nil {
		t.Fatal("no block id child")
	}
	if blockID.Value != "abc" {
		t.Errorf("block id: got %q, want abc", blockID.Value)
	}
	if para == nil {
		t.Fatal("no paragraph child")
	}
	if got := doc.Source[para.Span().Start:para.Span().End]; got != "" {
		t.Errorf("paragraph slice: got %q, want empty", got)
	}
}

func TestListContinuationLines(t *testing.T) {
	doc, err := Parse("- [ ] first line\n  second line\n- [ ] other\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	list := doc.Body.Children()[0].(*List)
	if got := len(list.Children()); got != 2 {
		t.Fatalf("items: got %d, want 2", got)
	}
	item := list.Children()[0].(*ListItem)
	para := item.Children()[0].(*Paragraph)
	text := doc.Source[para.Span().Start:para.Span().End]
	if text != "first line\n  second line" {
		t.Errorf("item slice: got %q", text)
	}
}

func TestCodeSpanTag(t *testing.T) {
	doc, err := Parse("- [ ] run `#build` then `echo #tag`\n", Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	var first, second *Tag
	Walk(doc.Body, func(n Node) bool {
		if tag, ok := n.(*Tag); ok {
			if first == nil {
				first = tag
			} else {
				second = tag
			}
		}
		return true
	})
	if first == nil || second == nil {
		t.Fatal("expected two tags inside code spans")
	}
	if !first.InCodeSpan {
		t.Error("tag beginning a code span should be flagged")
	}
	if second.InCodeSpan {
		t.Error("tag not at code span start should not be flagged")
	}
}
