// Package mdast parses kanban documents into a syntax tree: YAML
// frontmatter, a body of headings/lists/paragraphs with inline tokens,
// and a trailing settings code block.
package mdast

import "fmt"

// Kind identifies a node variant.
type Kind int

const (
	KindRoot Kind = iota
	KindHeading
	KindList
	KindListItem
	KindParagraph
	KindText
	KindCodeBlock
	KindThematicBreak
	KindTag
	KindDate
	KindDateLink
	KindTime
	KindWikilink
	KindEmbedWikilink
	KindBlockID
	KindCodeSpan
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindHeading:
		return "heading"
	case KindList:
		return "list"
	case KindListItem:
		return "list-item"
	case KindParagraph:
		return "paragraph"
	case KindText:
		return "text"
	case KindCodeBlock:
		return "code-block"
	case KindThematicBreak:
		return "thematic-break"
	case KindTag:
		return "tag"
	case KindDate:
		return "date"
	case KindDateLink:
		return "date-link"
	case KindTime:
		return "time"
	case KindWikilink:
		return "wikilink"
	case KindEmbedWikilink:
		return "embed-wikilink"
	case KindBlockID:
		return "block-id"
	case KindCodeSpan:
		return "code-span"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Node is the common interface over all tree variants. Only container
// variants additionally satisfy Container; traversal dispatches on the
// concrete type, never on the presence of a child field.
type Node interface {
	Kind() Kind
	Span() Span
}

// Container is satisfied only by node variants that hold children. The
// child slice is established at construction and is never nil, so a
// traversal over Children requires no presence check.
type Container interface {
	Node
	Children() []Node
}

// children is the mandatory child sequence embedded by every container
// variant. newChildren guarantees a concrete slice.
type children struct {
	nodes []Node
}

func newChildren(nodes []Node) children {
	if nodes == nil {
		nodes = []Node{}
	}
	return children{nodes: nodes}
}

func (c children) Children() []Node { return c.nodes }

// Root is the top of a parsed document body.
type Root struct {
	children
	span Span
}

// NewRoot constructs a Root with a concrete child slice.
func NewRoot(nodes []Node, span Span) *Root {
	return &Root{children: newChildren(nodes), span: span}
}

func (n *Root) Kind() Kind { return KindRoot }
func (n *Root) Span() Span { return n.span }

// Heading is an ATX heading line.
type Heading struct {
	children
	Level int
	Text  string
	span  Span
}

func NewHeading(level int, text string, nodes []Node, span Span) *Heading {
	return &Heading{children: newChildren(nodes), Level: level, Text: text, span: span}
}

func (n *Heading) Kind() Kind { return KindHeading }
func (n *Heading) Span() Span { return n.span }

// List is a run of list items. Its children are always ListItems.
type List struct {
	children
	span Span
}

func NewList(items []Node, span Span) *List {
	return &List{children: newChildren(items), span: span}
}

func (n *List) Kind() Kind { return KindList }
func (n *List) Span() Span { return n.span }

// ListItem is one list entry, checkbox or plain. Children are the
// item's block content (normally a single Paragraph) plus an optional
// trailing BlockID.
type ListItem struct {
	children
	// Checkbox reports whether the item carried a task marker.
	Checkbox bool
	// CheckChar is the character between the brackets; a space for a
	// pending item. Meaningless when Checkbox is false.
	CheckChar rune
	span      Span
}

func NewListItem(checkbox bool, checkChar rune, nodes []Node, span Span) *ListItem {
	return &ListItem{children: newChildren(nodes), Checkbox: checkbox, CheckChar: checkChar, span: span}
}

func (n *ListItem) Kind() Kind { return KindListItem }
func (n *ListItem) Span() Span { return n.span }

// Paragraph is a run of inline content.
type Paragraph struct {
	children
	span Span
}

func NewParagraph(nodes []Node, span Span) *Paragraph {
	return &Paragraph{children: newChildren(nodes), span: span}
}

func (n *Paragraph) Kind() Kind { return KindParagraph }
func (n *Paragraph) Span() Span { return n.span }

// Text is a leaf run of plain text.
type Text struct {
	Value string
	span  Span
}

func NewText(value string, span Span) *Text {
	return &Text{Value: value, span: span}
}

func (n *Text) Kind() Kind { return KindText }
func (n *Text) Span() Span { return n.span }

// CodeBlock is a fenced code block with an optional info string.
type CodeBlock struct {
	Info  string
	Value string
	span  Span
}

func NewCodeBlock(info, value string, span Span) *CodeBlock {
	return &CodeBlock{Info: info, Value: value, span: span}
}

func (n *CodeBlock) Kind() Kind { return KindCodeBlock }
func (n *CodeBlock) Span() Span { return n.span }

// ThematicBreak is a horizontal rule line.
type ThematicBreak struct {
	span Span
}

func NewThematicBreak(span Span) *ThematicBreak { return &ThematicBreak{span: span} }

func (n *ThematicBreak) Kind() Kind { return KindThematicBreak }
func (n *ThematicBreak) Span() Span { return n.span }

// Tag is an inline hashtag token, value includes the leading '#'.
type Tag struct {
	Value string
	// InCodeSpan marks a tag that begins a code span's content.
	InCodeSpan bool
	span       Span
}

func NewTag(value string, inCodeSpan bool, span Span) *Tag {
	return &Tag{Value: value, InCodeSpan: inCodeSpan, span: span}
}

func (n *Tag) Kind() Kind { return KindTag }
func (n *Tag) Span() Span { return n.span }

// Date is an inline date token, e.g. "@{2026-08-01}".
type Date struct {
	Value string // the date text between the braces
	span  Span
}

func NewDate(value string, span Span) *Date { return &Date{Value: value, span: span} }

func (n *Date) Kind() Kind { return KindDate }
func (n *Date) Span() Span { return n.span }

// DateLink is a date written as a wikilink, e.g. "@[[2026-08-01]]".
type DateLink struct {
	Value string
	span  Span
}

func NewDateLink(value string, span Span) *DateLink { return &DateLink{Value: value, span: span} }

func (n *DateLink) Kind() Kind { return KindDateLink }
func (n *DateLink) Span() Span { return n.span }

// Time is an inline time token, e.g. "@@{14:30}".
type Time struct {
	Value string
	span  Span
}

func NewTime(value string, span Span) *Time { return &Time{Value: value, span: span} }

func (n *Time) Kind() Kind { return KindTime }
func (n *Time) Span() Span { return n.span }

// Wikilink is an internal link token "[[target]]" or "[[target|alias]]".
type Wikilink struct {
	Target string
	Alias  string
	span   Span
}

func NewWikilink(target, alias string, span Span) *Wikilink {
	return &Wikilink{Target: target, Alias: alias, span: span}
}

func (n *Wikilink) Kind() Kind { return KindWikilink }
func (n *Wikilink) Span() Span { return n.span }

// EmbedWikilink is an embedded link token "![[target]]".
type EmbedWikilink struct {
	Target string
	Alias  string
	span   Span
}

func NewEmbedWikilink(target, alias string, span Span) *EmbedWikilink {
	return &EmbedWikilink{Target: target, Alias: alias, span: span}
}

func (n *EmbedWikilink) Kind() Kind { return KindEmbedWikilink }
func (n *EmbedWikilink) Span() Span { return n.span }

// BlockID is a trailing block identifier token, e.g. "^ab12cd".
type BlockID struct {
	Value string // identifier without the caret
	span  Span
}

func NewBlockID(value string, span Span) *BlockID { return &BlockID{Value: value, span: span} }

func (n *BlockID) Kind() Kind { return KindBlockID }
func (n *BlockID) Span() Span { return n.span }

// CodeSpan is an inline backtick span.
type CodeSpan struct {
	Value string
	span  Span
}

func NewCodeSpan(value string, span Span) *CodeSpan { return &CodeSpan{Value: value, span: span} }

func (n *CodeSpan) Kind() Kind { return KindCodeSpan }
func (n *CodeSpan) Span() Span { return n.span }

// Walk visits node and, for container variants, its children in order.
// Dispatch is by type assertion on Container, which only container
// variants implement.
func Walk(node Node, visit func(Node) bool) {
	if !visit(node) {
		return
	}
	if c, ok := node.(Container); ok {
		for _, child := range c.Children() {
			Walk(child, visit)
		}
	}
}
