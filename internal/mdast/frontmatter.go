package mdast

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const fenceLine = "---"

// Frontmatter holds the leading YAML block of a document. Raw is the
// exact text between the fences and is what the serializer re-emits,
// so keys the model never touches round-trip byte for byte. Values is
// the parsed view used for lookups.
type Frontmatter struct {
	Raw    string
	Values map[string]any
}

// IsZero reports whether the document had no frontmatter block.
func (f Frontmatter) IsZero() bool {
	return f.Raw == "" && f.Values == nil
}

// Has reports whether the frontmatter defines key.
func (f Frontmatter) Has(key string) bool {
	_, ok := f.Values[key]
	return ok
}

// String returns the value for key rendered as a string, or "" when
// absent.
func (f Frontmatter) String(key string) string {
	v, ok := f.Values[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// extractFrontmatter splits a leading ----fenced YAML block off source.
// It returns the frontmatter, the byte offset where the body starts,
// and a ParseError if the block is opened but never closed or the YAML
// is malformed.
func extractFrontmatter(source, path string) (Frontmatter, int, error) {
	if source != fenceLine && !strings.HasPrefix(source, fenceLine+"\n") {
		return Frontmatter{}, 0, nil
	}

	// Scan line by line for the closing fence.
	pos := len(fenceLine)
	if pos < len(source) {
		pos++ // consume the newline after the opening fence
	}
	innerStart := pos
	closeStart := -1
	for pos <= len(source) {
		lineEnd := strings.IndexByte(source[pos:], '\n')
		var line string
		next := len(source) + 1
		if lineEnd < 0 {
			line = source[pos:]
		} else {
			line = source[pos : pos+lineEnd]
			next = pos + lineEnd + 1
		}
		if line == fenceLine {
			closeStart = pos
			pos = next
			break
		}
		if pos >= len(source) {
			break
		}
		pos = next
	}
	if closeStart < 0 {
		return Frontmatter{}, 0, &ParseError{
			Path: path,
			Line: 1,
			Err:  fmt.Errorf("unterminated frontmatter block"),
		}
	}

	raw := source[innerStart:closeStart]
	values := make(map[string]any)
	if err := yaml.Unmarshal([]byte(raw), &values); err != nil {
		return Frontmatter{}, 0, &ParseError{
			Path: path,
			Line: 2,
			Err:  fmt.Errorf("frontmatter yaml: %w", err),
		}
	}

	bodyStart := pos
	if bodyStart > len(source) {
		bodyStart = len(source)
	}
	return Frontmatter{Raw: raw, Values: values}, bodyStart, nil
}

// MarshalFrontmatter renders values back to YAML for documents whose
// frontmatter the model created rather than parsed.
func MarshalFrontmatter(values map[string]any) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	out, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshal frontmatter: %w", err)
	}
	return string(out), nil
}
