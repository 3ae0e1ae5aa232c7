package mdast

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SettingsMarker opens the trailing board-settings footer. The footer
// is a comment-fenced JSON code block at the very end of a document:
//
//	%% kanban:settings
//	```
//	{"kanban-plugin":"board"}
//	```
//	%%
const SettingsMarker = "%% kanban:settings"

const commentFence = "%%"

// SettingsBlock is the raw trailing settings footer. JSON holds the
// text inside the code fence; Span covers the whole footer including
// the marker lines.
type SettingsBlock struct {
	JSON string
	span Span
}

func (s *SettingsBlock) Kind() Kind { return KindCodeBlock }
func (s *SettingsBlock) Span() Span { return s.span }

// Document is a fully parsed kanban document. Body node spans index
// into Source.
type Document struct {
	Path        string
	Source      string
	Frontmatter Frontmatter
	Body        *Root
	Settings    *SettingsBlock // nil when the document has no footer
}

// Options control tokenization of inline metadata.
type Options struct {
	// DateTrigger precedes a "{date}" or "[[date]]" token. Defaults
	// to "@".
	DateTrigger string
	// TimeTrigger precedes a "{time}" token. Defaults to "@@".
	TimeTrigger string
	// Path names the document in errors.
	Path string
}

func (o Options) withDefaults() Options {
	if o.DateTrigger == "" {
		o.DateTrigger = "@"
	}
	if o.TimeTrigger == "" {
		o.TimeTrigger = "@@"
	}
	return o
}

// Parse builds a Document from raw text. Frontmatter and settings
// errors are fatal for the document and returned as *ParseError.
func Parse(source string, opts Options) (*Document, error) {
	opts = opts.withDefaults()

	fm, bodyStart, err := extractFrontmatter(source, opts.Path)
	if err != nil {
		return nil, err
	}

	settings, bodyEnd, err := extractSettings(source, bodyStart, opts.Path)
	if err != nil {
		return nil, err
	}

	body, err := parseBlocks(source, bodyStart, bodyEnd, opts)
	if err != nil {
		return nil, err
	}

	return &Document{
		Path:        opts.Path,
		Source:      source,
		Frontmatter: fm,
		Body:        body,
		Settings:    settings,
	}, nil
}

// extractSettings scans backwards from the end of source for the
// settings footer. Returns the block and the byte offset where the
// body ends (the start of the footer), or len(source) when there is
// no footer.
func extractSettings(source string, bodyStart int, path string) (*SettingsBlock, int, error) {
	idx := strings.LastIndex(source, SettingsMarker)
	if idx < bodyStart {
		return nil, len(source), nil
	}
	// The marker must start a line.
	if idx > 0 && source[idx-1] != '\n' {
		return nil, len(source), nil
	}

	footer := source[idx:]
	lines := strings.Split(footer, "\n")
	// lines[0] is the marker; find the fenced JSON inside.
	jsonLines := make([]string, 0, len(lines))
	inFence := false
	fenceClosed := false
	for _, line := range lines[1:] {
		trimmed := strings.TrimRight(line, " \t")
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				fenceClosed = true
				break
			}
			inFence = true
			continue
		}
		if inFence {
			jsonLines = append(jsonLines, line)
			continue
		}
		if trimmed == "" || trimmed == commentFence {
			continue
		}
		// Unexpected content between marker and fence.
		return nil, 0, &ParseError{
			Path: path,
			Err:  fmt.Errorf("settings footer: unexpected content before code fence: %q", trimmed),
		}
	}
	if inFence && !fenceClosed {
		return nil, 0, &ParseError{
			Path: path,
			Err:  fmt.Errorf("settings footer: unterminated code fence"),
		}
	}
	if !inFence {
		return nil, 0, &ParseError{
			Path: path,
			Err:  fmt.Errorf("settings footer: missing code fence after marker"),
		}
	}

	block := &SettingsBlock{
		JSON: strings.Join(jsonLines, "\n"),
		span: Span{Start: idx, End: len(source)},
	}
	return block, idx, nil
}

// line is one physical source line with its absolute offsets.
type line struct {
	text  string
	start int
	end   int // offset just past the line text, excluding the newline
}

func splitLines(source string, from, to int) []line {
	var out []line
	pos := from
	for pos < to {
		nl := strings.IndexByte(source[pos:to], '\n')
		if nl < 0 {
			out = append(out, line{text: source[pos:to], start: pos, end: to})
			break
		}
		out = append(out, line{text: source[pos : pos+nl], start: pos, end: pos + nl})
		pos += nl + 1
	}
	return out
}

// parseBlocks parses the document body between bodyStart and bodyEnd
// into the block-level tree.
func parseBlocks(source string, bodyStart, bodyEnd int, opts Options) (*Root, error) {
	lines := splitLines(source, bodyStart, bodyEnd)
	var nodes []Node

	for i := 0; i < len(lines); {
		ln := lines[i]
		trimmed := strings.TrimSpace(ln.text)

		switch {
		case trimmed == "":
			i++

		case isThematicBreak(trimmed):
			nodes = append(nodes, NewThematicBreak(Span{Start: ln.start, End: ln.end}))
			i++

		case isHeading(trimmed):
			level, text := splitHeading(trimmed)
			nodes = append(nodes, NewHeading(level, text, nil, Span{Start: ln.start, End: ln.end}))
			i++

		case strings.HasPrefix(trimmed, "```"):
			block, consumed := parseCodeFence(source, lines, i)
			nodes = append(nodes, block)
			i += consumed

		case isListItemLine(ln.text):
			list, consumed, err := parseList(source, lines, i, opts)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, list)
			i += consumed

		default:
			para, consumed := parseParagraph(source, lines, i, opts)
			nodes = append(nodes, para)
			i += consumed
		}
	}

	return NewRoot(nodes, Span{Start: bodyStart, End: bodyEnd}), nil
}

func isThematicBreak(trimmed string) bool {
	if len(trimmed) < 3 {
		return false
	}
	var marker byte
	count := 0
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if c != '-' && c != '*' && c != '_' {
			return false
		}
		if marker == 0 {
			marker = c
		} else if c != marker {
			return false
		}
		count++
	}
	return count >= 3
}

func isHeading(trimmed string) bool {
	if trimmed == "" || trimmed[0] != '#' {
		return false
	}
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 {
		return false
	}
	return level == len(trimmed) || trimmed[level] == ' '
}

func splitHeading(trimmed string) (int, string) {
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	return level, strings.TrimSpace(trimmed[level:])
}

func parseCodeFence(source string, lines []line, start int) (Node, int) {
	open := strings.TrimSpace(lines[start].text)
	info := strings.TrimSpace(strings.TrimPrefix(open, "```"))
	var body []string
	end := lines[start].end
	consumed := 1
	for i := start + 1; i < len(lines); i++ {
		consumed++
		end = lines[i].end
		if strings.HasPrefix(strings.TrimSpace(lines[i].text), "```") {
			break
		}
		body = append(body, lines[i].text)
	}
	span := Span{Start: lines[start].start, End: end}
	return NewCodeBlock(info, strings.Join(body, "\n"), span), consumed
}

// listItemMarker matches "- ", "* ", "+ " bullets with optional leading
// indentation, returning the content offset within the line, or -1.
func listItemContentOffset(text string) int {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	if i >= len(text) {
		return -1
	}
	c := text[i]
	if c != '-' && c != '*' && c != '+' {
		return -1
	}
	if i+1 >= len(text) || text[i+1] != ' ' {
		return -1
	}
	return i + 2
}

func isListItemLine(text string) bool {
	return listItemContentOffset(text) >= 0
}

func listIndent(text string) int {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

// parseList consumes consecutive list-item lines (with their indented
// continuation lines) into a List node.
func parseList(source string, lines []line, start int, opts Options) (Node, int, error) {
	var items []Node
	i := start
	baseIndent := listIndent(lines[start].text)

	for i < len(lines) {
		ln := lines[i]
		off := listItemContentOffset(ln.text)
		if off < 0 || listIndent(ln.text) > baseIndent {
			break
		}

		// Collect continuation lines: anything indented past the
		// bullet, including nested bullets, belongs to this item.
		last := i
		for j := i + 1; j < len(lines); j++ {
			t := lines[j].text
			if strings.TrimSpace(t) == "" {
				break
			}
			if listIndent(t) <= baseIndent {
				break
			}
			last = j
		}

		item, err := parseListItem(source, ln, lines[i:last+1], off, opts)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
		i = last + 1

		// A blank line ends the list.
		if i < len(lines) && strings.TrimSpace(lines[i].text) == "" {
			break
		}
	}

	span := Span{Start: lines[start].start, End: lines[i-1].end}
	return NewList(items, span), i - start, nil
}

// checkboxPrefix parses a task marker "[x] " at the start of content,
// returning the check character and the offset past the marker, or
// ok=false for a plain bullet. The check character is a single code
// point and may be multi-byte.
func checkboxPrefix(content string) (checkChar rune, after int, ok bool) {
	if len(content) < 3 || content[0] != '[' {
		return 0, 0, false
	}
	r, size := utf8.DecodeRuneInString(content[1:])
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, false
	}
	closing := 1 + size
	if closing >= len(content) || content[closing] != ']' {
		return 0, 0, false
	}
	after = closing + 1
	if after < len(content) {
		if content[after] != ' ' {
			return 0, 0, false
		}
		after++
	}
	return r, after, true
}

func parseListItem(source string, first line, itemLines []line, contentOff int, opts Options) (Node, error) {
	content := first.text[contentOff:]
	checkChar, after, isTask := checkboxPrefix(content)

	contentStart := first.start + contentOff
	if isTask {
		contentStart += after
	}
	contentEnd := itemLines[len(itemLines)-1].end

	itemSpan := Span{Start: first.start, End: contentEnd}

	// A trailing block id is a sibling of the paragraph, excluded from
	// the paragraph's span.
	text := source[contentStart:contentEnd]
	var blockID *BlockID
	if id, idStart := trailingBlockID(text); id != "" {
		blockID = NewBlockID(id, Span{
			Start: contentStart + idStart,
			End:   contentEnd,
		})
		contentEnd = contentStart + idStart
		// Exclude the separating space as well.
		for contentEnd > contentStart && source[contentEnd-1] == ' ' {
			contentEnd--
		}
	}

	inline := parseInline(source, contentStart, contentEnd, opts)
	para := NewParagraph(inline, Span{Start: contentStart, End: contentEnd})

	children := []Node{para}
	if blockID != nil {
		children = append(children, blockID)
	}
	return NewListItem(isTask, checkChar, children, itemSpan), nil
}

// trailingBlockID recognizes a " ^id" suffix on the last line of an
// item, or a bare "^id" when the id is the item's entire content.
// Returns the id and its start offset within text (pointing at the
// caret), or "" when absent.
func trailingBlockID(text string) (string, int) {
	lastNL := strings.LastIndexByte(text, '\n')
	lastLine := text[lastNL+1:]
	caret := strings.LastIndexByte(lastLine, '^')
	if caret < 0 || (caret > 0 && lastLine[caret-1] != ' ') {
		return "", 0
	}
	id := lastLine[caret+1:]
	if id == "" {
		return "", 0
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		valid := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') || c == '-'
		if !valid {
			return "", 0
		}
	}
	return id, lastNL + 1 + caret
}

func parseParagraph(source string, lines []line, start int, opts Options) (Node, int) {
	last := start
	for j := start + 1; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j].text)
		if t == "" || isHeading(t) || isThematicBreak(t) ||
			strings.HasPrefix(t, "```") || isListItemLine(lines[j].text) {
			break
		}
		last = j
	}
	span := Span{Start: lines[start].start, End: lines[last].end}
	inline := parseInline(source, span.Start, span.End, opts)
	return NewParagraph(inline, span), last - start + 1
}
