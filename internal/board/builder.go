package board

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/erduoya77/obsidian-kanban/internal/linkindex"
	"github.com/erduoya77/obsidian-kanban/internal/mdast"
	"github.com/erduoya77/obsidian-kanban/internal/settings"
)

// ArchiveHeading is the literal heading that, when immediately
// preceded by a thematic break, starts the archive section.
const ArchiveHeading = "Archive"

// completeMarker is the literal paragraph marking a lane's items as
// complete. Bold markers are accepted on input; the serializer always
// emits the bold form.
const completeMarker = "Complete"

// TitlePostProcessor rewrites an item's display title after all
// configured excisions. Processors may also enrich the item's
// metadata. They never touch TitleRaw.
type TitlePostProcessor func(title string, item *Item, r *settings.Resolver) string

// Builder converts parsed documents into Boards.
type Builder struct {
	resolver *settings.Resolver
	index    linkindex.Index
	post     []TitlePostProcessor
	newID    func() string
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPostProcessor appends a title post-processing hook.
func WithPostProcessor(p TitlePostProcessor) BuilderOption {
	return func(b *Builder) { b.post = append(b.post, p) }
}

// WithIDGenerator overrides entity id generation, for deterministic
// tests.
func WithIDGenerator(gen func() string) BuilderOption {
	return func(b *Builder) { b.newID = gen }
}

// NewBuilder creates a Builder. The settings resolver supplies option
// defaults; index is the injected link collaborator and may be
// linkindex.Nop{}.
func NewBuilder(r *settings.Resolver, index linkindex.Index, opts ...BuilderOption) *Builder {
	b := &Builder{
		resolver: r,
		index:    index,
		post:     []TitlePostProcessor{inlineFieldProcessor},
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build walks the document's top-level nodes and assembles the Board.
// A settings footer that fails validation is fatal for the document.
func (b *Builder) Build(doc *mdast.Document) (*Board, error) {
	footerJSON := ""
	if doc.Settings != nil {
		footerJSON = doc.Settings.JSON
	}
	r, err := b.resolver.WithDocument(footerJSON)
	if err != nil {
		return nil, &mdast.ParseError{Path: doc.Path, Err: err}
	}

	doneChar := DefaultDoneChar
	if s := r.String(settings.KeyDoneMarker); s != "" {
		// The marker is one code point, not one byte.
		doneChar, _ = utf8.DecodeRuneInString(s)
	}

	out := &Board{
		ID:          doc.Path,
		Lanes:       []Lane{},
		Archive:     []Item{},
		Frontmatter: doc.Frontmatter,
		DoneChar:    doneChar,
	}
	if doc.Settings != nil {
		out.Settings = r.Raw()
	}

	nodes := doc.Body.Children()
	consumed := make(map[int]bool)

	for i, node := range nodes {
		switch n := node.(type) {
		case *mdast.Heading:
			if consumed[i] {
				continue
			}
			if n.Text == ArchiveHeading && i > 0 && nodes[i-1].Kind() == mdast.KindThematicBreak {
				b.buildArchive(doc, nodes, i, consumed, out, r)
				continue
			}
			lane := b.buildLane(doc, nodes, i, consumed, r, doneChar)
			out.Lanes = append(out.Lanes, lane)

		case *mdast.List:
			if consumed[i] {
				continue
			}
			// A list before any heading still holds cards; give it an
			// untitled lane rather than dropping content.
			consumed[i] = true
			lane := Lane{ID: b.newID(), Title: "", Items: b.buildItems(doc, n, r, doneChar)}
			out.Lanes = append(out.Lanes, lane)
		}
	}

	return out, nil
}

// buildLane assembles one lane from the heading at index start,
// looking ahead through following siblings for its list.
func (b *Builder) buildLane(doc *mdast.Document, nodes []mdast.Node, start int, consumed map[int]bool, r *settings.Resolver, doneChar rune) Lane {
	heading := nodes[start].(*mdast.Heading)
	lane := Lane{
		ID:    b.newID(),
		Title: heading.Text,
		Items: []Item{},
		Cap:   r.LaneCap(heading.Text),
	}

lookahead:
	for j := start + 1; j < len(nodes); j++ {
		switch n := nodes[j].(type) {
		case *mdast.Heading:
			break lookahead
		case *mdast.Paragraph:
			text := strings.TrimSpace(doc.Source[n.Span().Start:n.Span().End])
			if isCompleteMarker(text) {
				lane.CompleteMarker = true
				consumed[j] = true
				continue
			}
			if strings.HasPrefix(text, mdast.SettingsMarker) {
				break lookahead
			}
		case *mdast.List:
			consumed[j] = true
			lane.Items = b.buildItems(doc, n, r, doneChar)
			break lookahead
		}
	}

	return lane
}

// buildArchive routes the list following the archive heading into the
// board's archive sequence.
func (b *Builder) buildArchive(doc *mdast.Document, nodes []mdast.Node, start int, consumed map[int]bool, out *Board, r *settings.Resolver) {
	consumed[start] = true
	for j := start + 1; j < len(nodes); j++ {
		switch n := nodes[j].(type) {
		case *mdast.Heading:
			return
		case *mdast.List:
			consumed[j] = true
			out.Archive = append(out.Archive, b.buildItems(doc, n, r, out.DoneChar)...)
			return
		}
	}
}

func isCompleteMarker(text string) bool {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(text, "**"), "**")
	return trimmed == completeMarker
}

func (b *Builder) buildItems(doc *mdast.Document, list *mdast.List, r *settings.Resolver, doneChar rune) []Item {
	items := make([]Item, 0, len(list.Children()))
	for _, child := range list.Children() {
		li, ok := child.(*mdast.ListItem)
		if !ok {
			continue
		}
		items = append(items, b.buildItem(doc, li, r, doneChar))
	}
	return items
}

// emptyCheckbox matches a slice that is exactly an empty checkbox
// marker left over from a content-free task line.
var emptyCheckbox = regexp.MustCompile(`^\[.?\]$`)

// buildItem slices the item's content boundary out of the source,
// classifies its inline tokens, and derives the display title. An
// item with no parseable content yields a valid empty Item.
func (b *Builder) buildItem(doc *mdast.Document, li *mdast.ListItem, r *settings.Resolver, doneChar rune) Item {
	checkChar := rune(PendingChar)
	if li.Checkbox {
		checkChar = li.CheckChar
	}

	item := Item{
		ID:        b.newID(),
		CheckChar: checkChar,
		Checked:   checkChar == doneChar,
	}

	var para *mdast.Paragraph
	for _, child := range li.Children() {
		switch n := child.(type) {
		case *mdast.Paragraph:
			if para == nil {
				para = n
			}
		case *mdast.BlockID:
			item.BlockID = n.Value
		}
	}
	if para == nil {
		item.SearchText = ""
		return item
	}

	span := para.Span()
	raw := doc.Source[span.Start:span.End]
	if emptyCheckbox.MatchString(strings.TrimSpace(raw)) {
		raw = ""
	}

	md, excisions := b.classifyTokens(para, r)
	item.Metadata = md

	item.TitleRaw = dedentContinuations(raw)

	title := raw
	if raw != "" && len(excisions) > 0 {
		title = applyExcisions(doc.Source, span, excisions)
	}
	title = strings.TrimSpace(dedentContinuations(title))
	for _, p := range b.post {
		title = p(title, &item, r)
	}
	item.Title = title
	item.SearchText = buildSearchText(title, item.Metadata)

	return item
}

// classifyTokens walks a paragraph's inline tokens, filling the
// metadata bag and collecting source ranges to excise from the display
// title under the move-tags / move-dates options.
func (b *Builder) classifyTokens(para *mdast.Paragraph, r *settings.Resolver) (ItemMetadata, []mdast.Span) {
	md := ItemMetadata{Tags: []string{}}
	var excisions []mdast.Span

	moveTags := r.Bool(settings.KeyMoveTags)
	moveDates := r.Bool(settings.KeyMoveDates)

	// Code span ranges: tags inside them still count (unless they
	// begin the span) but are never excised.
	var codeSpans []mdast.Span
	for _, child := range para.Children() {
		if cs, ok := child.(*mdast.CodeSpan); ok {
			codeSpans = append(codeSpans, cs.Span())
		}
	}
	inCode := func(s mdast.Span) bool {
		for _, c := range codeSpans {
			if s.Start >= c.Start && s.End <= c.End {
				return true
			}
		}
		return false
	}

	for _, child := range para.Children() {
		switch n := child.(type) {
		case *mdast.Tag:
			if n.InCodeSpan {
				continue
			}
			md.Tags = append(md.Tags, n.Value)
			if moveTags && !inCode(n.Span()) {
				excisions = append(excisions, n.Span())
			}
		case *mdast.Date:
			md.Date = n.Value
			if moveDates {
				excisions = append(excisions, n.Span())
			}
		case *mdast.DateLink:
			md.Date = n.Value
			md.DateLink = true
			if moveDates {
				excisions = append(excisions, n.Span())
			}
		case *mdast.Time:
			md.Time = n.Value
			if moveDates {
				excisions = append(excisions, n.Span())
			}
		case *mdast.Wikilink:
			if md.File != nil {
				continue
			}
			acc := &FileAccessor{Target: n.Target}
			if fi, err := b.index.Resolve(n.Target); err == nil {
				if meta, err := b.index.Metadata(fi.Path); err == nil {
					acc.Meta = meta
				}
			}
			md.File = acc
		case *mdast.EmbedWikilink:
			if md.File != nil {
				continue
			}
			md.File = &FileAccessor{Target: n.Target, Embed: true}
		}
	}

	return md, excisions
}

// applyExcisions removes the given absolute source ranges from the
// paragraph slice, consuming one adjacent space per removal so no
// doubled separator is left behind.
func applyExcisions(source string, span mdast.Span, excisions []mdast.Span) string {
	cut := make([]mdast.Span, len(excisions))
	copy(cut, excisions)
	// Sort descending by start so earlier offsets stay valid.
	for i := 1; i < len(cut); i++ {
		for j := i; j > 0 && cut[j].Start > cut[j-1].Start; j-- {
			cut[j], cut[j-1] = cut[j-1], cut[j]
		}
	}

	out := source[span.Start:span.End]
	for _, c := range cut {
		rs, re := c.Start-span.Start, c.End-span.Start
		if rs < 0 || re > len(out) || rs > re {
			continue
		}
		if rs > 0 && out[rs-1] == ' ' {
			rs--
		} else if re < len(out) && out[re] == ' ' {
			re++
		}
		out = out[:rs] + out[re:]
	}
	return out
}

// continuationIndent is the canonical indent the serializer prepends
// to every title line after the first; dedent strips exactly this.
const continuationIndent = "  "

func dedentContinuations(s string) string {
	if !strings.ContainsRune(s, '\n') {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimPrefix(lines[i], continuationIndent)
	}
	return strings.Join(lines, "\n")
}

func indentContinuations(s string) string {
	if !strings.ContainsRune(s, '\n') {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = continuationIndent + lines[i]
	}
	return strings.Join(lines, "\n")
}

// inlineField matches bracketed "[key:: value]" inline fields.
var inlineField = regexp.MustCompile(`\s?\[([^\[\]:]+)::\s*([^\[\]]*)\]`)

// inlineFieldProcessor relocates recognized inline fields out of the
// visible title when the move-inline-fields option is set.
func inlineFieldProcessor(title string, item *Item, r *settings.Resolver) string {
	if !r.Bool(settings.KeyMoveInlineFields) {
		return title
	}
	matches := inlineField.FindAllStringSubmatch(title, -1)
	if len(matches) == 0 {
		return title
	}
	if item.Metadata.Fields == nil {
		item.Metadata.Fields = make(map[string]string, len(matches))
	}
	for _, m := range matches {
		item.Metadata.Fields[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(inlineField.ReplaceAllString(title, ""))
}
