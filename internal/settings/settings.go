// Package settings resolves board configuration options. Options come
// from two layers: application defaults and a per-document settings
// footer; the footer wins. The footer JSON is validated against a
// schema before it is trusted.
package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Option keys understood by the parser and board builder. The footer
// may carry additional keys; they round-trip untouched.
const (
	KeyBoardMarker       = "kanban-plugin"
	KeyDateTrigger       = "date-trigger"
	KeyTimeTrigger       = "time-trigger"
	KeyDateFormat        = "date-format"
	KeyTimeFormat        = "time-format"
	KeyDateDisplayFormat = "date-display-format"
	KeyLinkDateToPage    = "link-date-to-daily-note"
	KeyMoveTags          = "move-tags"
	KeyMoveDates         = "move-dates"
	KeyMoveInlineFields  = "move-inline-fields"
	KeyDoneMarker        = "done-marker"
	KeyArchiveWithDate   = "archive-with-date"
	KeyArchiveDateFormat = "archive-date-format"
	KeyMaxArchiveSize    = "max-archive-size"
	KeyLaneCaps          = "lane-caps"
)

// schema validates the settings footer. Unknown keys are allowed so
// newer documents still load.
const schemaJSON = `{
	"type": "object",
	"properties": {
		"kanban-plugin": {"type": "string"},
		"date-trigger": {"type": "string", "minLength": 1},
		"time-trigger": {"type": "string", "minLength": 1},
		"date-format": {"type": "string"},
		"time-format": {"type": "string"},
		"date-display-format": {"type": "string"},
		"link-date-to-daily-note": {"type": "boolean"},
		"move-tags": {"type": "boolean"},
		"move-dates": {"type": "boolean"},
		"move-inline-fields": {"type": "boolean"},
		"done-marker": {"type": "string", "minLength": 1, "maxLength": 1},
		"archive-with-date": {"type": "boolean"},
		"archive-date-format": {"type": "string"},
		"max-archive-size": {"type": "integer", "minimum": 0},
		"lane-caps": {
			"type": "object",
			"additionalProperties": {"type": "integer", "minimum": 0}
		}
	}
}`

var footerSchema = jsonschema.MustCompileString("kanban-settings.json", schemaJSON)

// Defaults returns the built-in option values.
func Defaults() map[string]any {
	return map[string]any{
		KeyBoardMarker:       "board",
		KeyDateTrigger:       "@",
		KeyTimeTrigger:       "@@",
		KeyDateFormat:        "2006-01-02",
		KeyTimeFormat:        "15:04",
		KeyDateDisplayFormat: "2006-01-02",
		KeyLinkDateToPage:    false,
		KeyMoveTags:          false,
		KeyMoveDates:         false,
		KeyMoveInlineFields:  false,
		KeyDoneMarker:        "x",
		KeyArchiveWithDate:   false,
		KeyArchiveDateFormat: "2006-01-02",
		KeyMaxArchiveSize:    0,
	}
}

// Resolver exposes the flat option mapping for one document.
type Resolver struct {
	defaults map[string]any
	doc      map[string]any
}

// NewResolver builds a resolver over application defaults. A nil map
// falls back to the built-in defaults.
func NewResolver(defaults map[string]any) *Resolver {
	base := Defaults()
	for k, v := range defaults {
		base[k] = v
	}
	return &Resolver{defaults: base, doc: map[string]any{}}
}

// WithDocument returns a resolver layering the document's settings
// footer over the defaults. The JSON is validated first; an invalid
// footer is an error for that document only.
func (r *Resolver) WithDocument(footerJSON string) (*Resolver, error) {
	trimmed := strings.TrimSpace(footerJSON)
	if trimmed == "" {
		return &Resolver{defaults: r.defaults, doc: map[string]any{}}, nil
	}

	var instance any
	if err := json.Unmarshal([]byte(trimmed), &instance); err != nil {
		return nil, fmt.Errorf("settings footer json: %w", err)
	}
	if err := footerSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("settings footer schema: %w", err)
	}

	doc, ok := instance.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("settings footer: expected a json object")
	}
	return &Resolver{defaults: r.defaults, doc: doc}, nil
}

// Raw returns the document-layer settings map.
func (r *Resolver) Raw() map[string]any {
	return r.doc
}

// Get returns the option value and whether either layer defines it.
func (r *Resolver) Get(key string) (any, bool) {
	if v, ok := r.doc[key]; ok {
		return v, true
	}
	v, ok := r.defaults[key]
	return v, ok
}

// Bool returns a boolean option, false when unset or mistyped.
func (r *Resolver) Bool(key string) bool {
	v, ok := r.Get(key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// String returns a string option, "" when unset or mistyped.
func (r *Resolver) String(key string) string {
	v, ok := r.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Int returns an integer option, 0 when unset. JSON numbers decode as
// float64 and are accepted.
func (r *Resolver) Int(key string) int {
	v, ok := r.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// LaneCap returns the display cap for a lane title, 0 meaning no cap.
func (r *Resolver) LaneCap(laneTitle string) int {
	v, ok := r.Get(KeyLaneCaps)
	if !ok {
		return 0
	}
	caps, ok := v.(map[string]any)
	if !ok {
		return 0
	}
	n, ok := caps[laneTitle]
	if !ok {
		return 0
	}
	switch c := n.(type) {
	case int:
		return c
	case float64:
		return int(c)
	default:
		return 0
	}
}

// MarshalFooter renders the document-layer settings as the JSON stored
// in the settings footer. Keys are emitted in sorted order so the
// output is stable.
func (r *Resolver) MarshalFooter() (string, error) {
	return MarshalFooter(r.doc)
}

// MarshalFooter renders a settings map as canonical footer JSON.
func MarshalFooter(doc map[string]any) (string, error) {
	if len(doc) == 0 {
		return "{}", nil
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return "", fmt.Errorf("marshal settings key %q: %w", k, err)
		}
		vb, err := json.Marshal(doc[k])
		if err != nil {
			return "", fmt.Errorf("marshal settings value for %q: %w", k, err)
		}
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.String(), nil
}
