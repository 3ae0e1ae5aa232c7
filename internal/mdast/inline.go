package mdast

import "strings"

// parseInline tokenizes source[start:end] into text runs and inline
// metadata tokens. Tokens never cross line boundaries except plain
// text, which may span continuation lines.
func parseInline(source string, start, end int, opts Options) []Node {
	var nodes []Node
	text := source[start:end]

	textStart := 0
	flush := func(upto int) {
		if upto > textStart {
			nodes = append(nodes, NewText(text[textStart:upto], Span{
				Start: start + textStart,
				End:   start + upto,
			}))
		}
	}

	i := 0
	for i < len(text) {
		c := text[i]

		switch {
		case c == '`':
			value, width := scanCodeSpan(text[i:])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			span := Span{Start: start + i, End: start + i + width}
			nodes = append(nodes, NewCodeSpan(value, span))
			// Tags inside the span still tokenize, but one beginning
			// the span content is marked so the builder can skip it.
			nodes = append(nodes, scanCodeSpanTags(value, start+i+1)...)
			i += width
			textStart = i

		case c == '!' && strings.HasPrefix(text[i:], "![["):
			target, alias, width := scanWikilink(text[i+1:])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			span := Span{Start: start + i, End: start + i + 1 + width}
			nodes = append(nodes, NewEmbedWikilink(target, alias, span))
			i += 1 + width
			textStart = i

		case hasTriggerAt(text, i, opts.TimeTrigger) && strings.HasPrefix(text[i+len(opts.TimeTrigger):], "{"):
			value, width := scanBraced(text[i+len(opts.TimeTrigger):])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			total := len(opts.TimeTrigger) + width
			span := Span{Start: start + i, End: start + i + total}
			nodes = append(nodes, NewTime(value, span))
			i += total
			textStart = i

		case hasTriggerAt(text, i, opts.DateTrigger) && strings.HasPrefix(text[i+len(opts.DateTrigger):], "{"):
			value, width := scanBraced(text[i+len(opts.DateTrigger):])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			total := len(opts.DateTrigger) + width
			span := Span{Start: start + i, End: start + i + total}
			nodes = append(nodes, NewDate(value, span))
			i += total
			textStart = i

		case hasTriggerAt(text, i, opts.DateTrigger) && strings.HasPrefix(text[i+len(opts.DateTrigger):], "[["):
			target, _, width := scanWikilink(text[i+len(opts.DateTrigger):])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			total := len(opts.DateTrigger) + width
			span := Span{Start: start + i, End: start + i + total}
			nodes = append(nodes, NewDateLink(target, span))
			i += total
			textStart = i

		case c == '[' && strings.HasPrefix(text[i:], "[["):
			target, alias, width := scanWikilink(text[i:])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			span := Span{Start: start + i, End: start + i + width}
			nodes = append(nodes, NewWikilink(target, alias, span))
			i += width
			textStart = i

		case c == '#' && tagBoundary(text, i):
			value, width := scanTag(text[i:])
			if width == 0 {
				i++
				continue
			}
			flush(i)
			span := Span{Start: start + i, End: start + i + width}
			nodes = append(nodes, NewTag(value, false, span))
			i += width
			textStart = i

		default:
			i++
		}
	}
	flush(len(text))

	return nodes
}

// hasTriggerAt reports whether text[i:] begins with trigger and the
// trigger is not a prefix of a longer trigger occurrence (e.g. "@" at
// the start of "@@" when the time trigger is "@@").
func hasTriggerAt(text string, i int, trigger string) bool {
	return trigger != "" && strings.HasPrefix(text[i:], trigger)
}

// tagBoundary reports whether a '#' at offset i starts a tag: it must
// be at the start of the text or preceded by whitespace or an opening
// parenthesis.
func tagBoundary(text string, i int) bool {
	if i == 0 {
		return true
	}
	prev := text[i-1]
	return prev == ' ' || prev == '\t' || prev == '\n' || prev == '('
}

// scanTag consumes "#name" where name is [A-Za-z0-9_/-]+ containing at
// least one non-digit. Returns the token including '#'.
func scanTag(text string) (string, int) {
	i := 1
	hasAlpha := false
	for i < len(text) {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			hasAlpha = true
			i++
		case c >= '0' && c <= '9', c == '/', c == '-':
			i++
		default:
			goto done
		}
	}
done:
	if i == 1 || !hasAlpha {
		return "", 0
	}
	return text[:i], i
}

// scanBraced consumes "{value}" and returns the inner value.
func scanBraced(text string) (string, int) {
	if text == "" || text[0] != '{' {
		return "", 0
	}
	close := strings.IndexByte(text, '}')
	if close < 0 {
		return "", 0
	}
	inner := text[1:close]
	if strings.ContainsRune(inner, '\n') {
		return "", 0
	}
	return inner, close + 1
}

// scanWikilink consumes "[[target]]" or "[[target|alias]]".
func scanWikilink(text string) (target, alias string, width int) {
	if !strings.HasPrefix(text, "[[") {
		return "", "", 0
	}
	close := strings.Index(text, "]]")
	if close < 0 {
		return "", "", 0
	}
	inner := text[2:close]
	if strings.ContainsRune(inner, '\n') {
		return "", "", 0
	}
	if pipe := strings.IndexByte(inner, '|'); pipe >= 0 {
		return inner[:pipe], inner[pipe+1:], close + 2
	}
	return inner, "", close + 2
}

// scanCodeSpan consumes "`code`" and returns the inner value.
func scanCodeSpan(text string) (string, int) {
	if text == "" || text[0] != '`' {
		return "", 0
	}
	close := strings.IndexByte(text[1:], '`')
	if close < 0 {
		return "", 0
	}
	inner := text[1 : 1+close]
	if strings.ContainsRune(inner, '\n') {
		return "", 0
	}
	return inner, close + 2
}

// scanCodeSpanTags tokenizes hashtags inside a code span's value. A
// tag that begins the span content is flagged so it never reaches the
// tag list.
func scanCodeSpanTags(value string, valueStart int) []Node {
	var nodes []Node
	i := 0
	for i < len(value) {
		if value[i] == '#' && tagBoundary(value, i) {
			tag, width := scanTag(value[i:])
			if width > 0 {
				first := i == 0
				nodes = append(nodes, NewTag(tag, first, Span{
					Start: valueStart + i,
					End:   valueStart + i + width,
				}))
				i += width
				continue
			}
		}
		i++
	}
	return nodes
}
