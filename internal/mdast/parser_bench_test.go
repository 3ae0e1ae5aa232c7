package mdast

import (
	"fmt"
	"strings"
	"testing"
)

// BenchmarkParse benchmarks parsing a small board document.
func BenchmarkParse(b *testing.B) {
	source := "---\n" +
		"kanban-plugin: board\n" +
		"---\n" +
		"\n" +
		"## Todo\n" +
		"\n" +
		"- [ ] first task #work @{2026-08-01}\n" +
		"- [/] second task [[note]]\n" +
		"\n" +
		"## Done\n" +
		"\n" +
		"- [x] shipped ^ab12\n" +
		"\n" +
		"%% kanban:settings\n" +
		"```\n" +
		"{\"kanban-plugin\":\"board\"}\n" +
		"```\n" +
		"%%\n"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(source, Options{}); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

// BenchmarkParseLarge benchmarks parsing a board with 20 lanes of 50
// items each.
func BenchmarkParseLarge(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("---\nkanban-plugin: board\n---\n\n")
	for lane := 0; lane < 20; lane++ {
		fmt.Fprintf(&sb, "## Lane %d\n\n", lane)
		for item := 0; item < 50; item++ {
			fmt.Fprintf(&sb, "- [ ] task %d in lane %d #tag%d\n", item, lane, item%7)
		}
		sb.WriteString("\n")
	}
	source := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(source, Options{}); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}
