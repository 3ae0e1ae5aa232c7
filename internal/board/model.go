// Package board defines the kanban domain model and builds it from
// parsed documents: a Board of ordered Lanes of Items, plus archive,
// settings, frontmatter, and recorded per-document errors.
package board

import (
	"fmt"
	"strings"

	"github.com/erduoya77/obsidian-kanban/internal/mdast"
)

// Check characters for the three-state progress cycle. The done
// character is configurable; DefaultDoneChar is used when the settings
// resolver does not override it.
const (
	PendingChar     = ' '
	InProgressChar  = '/'
	DefaultDoneChar = 'x'
)

// NextCheckChar advances the three-state cycle:
// pending -> in-progress -> done -> pending.
func NextCheckChar(c, doneChar rune) rune {
	switch c {
	case PendingChar:
		return InProgressChar
	case InProgressChar:
		return doneChar
	default:
		return PendingChar
	}
}

// FileAccessor describes a file link found in an item's text.
type FileAccessor struct {
	// Target is the link target as written, without brackets.
	Target string
	// Embed marks an embedded link ("![[...]]").
	Embed bool
	// Meta holds cached metadata for the linked file, supplied by the
	// link index collaborator for plain wikilinks.
	Meta map[string]any
}

// ItemMetadata is the metadata bag extracted from an item's text.
type ItemMetadata struct {
	Date     string
	DateLink bool // the date was written as a wikilink
	Time     string
	Tags     []string
	File     *FileAccessor
	// Fields holds inline "key:: value" pairs relocated out of the
	// title by the post-processing hook.
	Fields map[string]string
}

// Item is a single card.
type Item struct {
	ID string
	// TitleRaw is the governing text: it round-trips through the
	// serializer byte for byte (continuation lines dedented).
	TitleRaw string
	// Title is the derived display title after configured excisions
	// and post-processing.
	Title string
	// SearchText is a lowercased index string over title and metadata.
	SearchText string
	// CheckChar encodes progress: ' ' pending, '/' in progress, the
	// configured done character for complete.
	CheckChar rune
	// Checked is derived: CheckChar equals the board's done character.
	Checked  bool
	BlockID  string
	Metadata ItemMetadata
}

// EntityID implements treeop addressing.
func (it Item) EntityID() string { return it.ID }

// WithCheckChar returns a copy of the item with its check character
// set and the derived Checked recomputed.
func (it Item) WithCheckChar(c, doneChar rune) Item {
	it.CheckChar = c
	it.Checked = c == doneChar
	return it
}

// Lane is a named column of items.
type Lane struct {
	ID    string
	Title string
	Items []Item
	// CompleteMarker marks a lane whose items are considered complete.
	CompleteMarker bool
	// Cap is the display cap, 0 meaning uncapped.
	Cap int
}

// EntityID implements treeop addressing.
func (l Lane) EntityID() string { return l.ID }

// Error is a recorded per-document failure. It never escapes the
// board it is recorded on.
type Error struct {
	Path string
	Err  error
}

func (e Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e Error) Unwrap() error { return e.Err }

// Board is the root model for one document (or, in aggregate use, for
// a synthesized view over many documents).
type Board struct {
	ID    string
	Lanes []Lane
	// Archive holds items routed to the archive section.
	Archive []Item
	// Settings is the document-layer settings mapping from the
	// trailing footer; nil when the document has no footer.
	Settings    map[string]any
	Frontmatter mdast.Frontmatter
	// DoneChar is the configured done character for this board.
	DoneChar rune
	Errors   []Error
}

// Lane returns the lane with the given id, or nil.
func (b *Board) Lane(id string) *Lane {
	for i := range b.Lanes {
		if b.Lanes[i].ID == id {
			return &b.Lanes[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the board. Mutation operations copy
// before they write so callers can hold old values indefinitely.
func (b *Board) Clone() *Board {
	out := *b
	out.Lanes = make([]Lane, len(b.Lanes))
	for i, l := range b.Lanes {
		out.Lanes[i] = l
		out.Lanes[i].Items = append([]Item(nil), l.Items...)
	}
	out.Archive = append([]Item(nil), b.Archive...)
	out.Errors = append([]Error(nil), b.Errors...)
	if b.Settings != nil {
		out.Settings = make(map[string]any, len(b.Settings))
		for k, v := range b.Settings {
			out.Settings[k] = v
		}
	}
	return &out
}

// buildSearchText derives the search-index string for an item.
func buildSearchText(title string, md ItemMetadata) string {
	parts := []string{title}
	parts = append(parts, md.Tags...)
	if md.Date != "" {
		parts = append(parts, md.Date)
	}
	if md.Time != "" {
		parts = append(parts, md.Time)
	}
	if md.File != nil {
		parts = append(parts, md.File.Target)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
