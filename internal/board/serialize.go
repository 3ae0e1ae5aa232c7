package board

import (
	"fmt"
	"strings"

	"github.com/erduoya77/obsidian-kanban/internal/mdast"
	"github.com/erduoya77/obsidian-kanban/internal/settings"
)

// Serialize renders a board back to document text in canonical form:
// frontmatter, one section per lane (heading, optional complete
// marker, checkbox items), the archive section when non-empty, and
// the trailing settings footer. Re-parsing the output reproduces the
// board on every governed field, and serializing that reparse is
// byte-identical.
func Serialize(b *Board) (string, error) {
	var out strings.Builder

	if !b.Frontmatter.IsZero() {
		out.WriteString("---\n")
		raw := b.Frontmatter.Raw
		if raw == "" && len(b.Frontmatter.Values) > 0 {
			marshaled, err := mdast.MarshalFrontmatter(b.Frontmatter.Values)
			if err != nil {
				return "", err
			}
			raw = marshaled
		}
		out.WriteString(raw)
		if raw != "" && !strings.HasSuffix(raw, "\n") {
			out.WriteByte('\n')
		}
		out.WriteString("---\n\n")
	}

	for _, lane := range b.Lanes {
		writeLane(&out, lane)
	}

	if len(b.Archive) > 0 {
		out.WriteString("***\n\n")
		out.WriteString("## " + ArchiveHeading + "\n\n")
		for _, item := range b.Archive {
			writeItem(&out, item)
		}
		out.WriteByte('\n')
	}

	if b.Settings != nil {
		footer, err := settings.MarshalFooter(b.Settings)
		if err != nil {
			return "", err
		}
		out.WriteString(mdast.SettingsMarker + "\n")
		out.WriteString("```\n")
		out.WriteString(footer + "\n")
		out.WriteString("```\n")
		out.WriteString("%%\n")
	}

	return out.String(), nil
}

func writeLane(out *strings.Builder, lane Lane) {
	title := lane.Title
	out.WriteString("## " + title + "\n\n")
	if lane.CompleteMarker {
		out.WriteString("**" + completeMarker + "**\n\n")
	}
	for _, item := range lane.Items {
		writeItem(out, item)
	}
	out.WriteByte('\n')
}

func writeItem(out *strings.Builder, item Item) {
	fmt.Fprintf(out, "- [%c]", item.CheckChar)
	if title := indentContinuations(item.TitleRaw); title != "" {
		out.WriteString(" " + title)
	}
	if item.BlockID != "" {
		out.WriteString(" ^" + item.BlockID)
	}
	out.WriteByte('\n')
}
