package mdast

import "fmt"

// ParseError reports a malformed document region. It is fatal to the
// document it occurred in and is never propagated past the
// per-document boundary by callers.
type ParseError struct {
	Path string // document path, may be empty when parsing raw text
	Line int    // 1-based line of the offending region, 0 if unknown
	Err  error
}

func (e *ParseError) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// StructuralError reports a node that violates the mandatory
// child-sequence invariant. Unreachable when trees are built through
// the constructors in this package; kept as a typed error so callers
// can contain it at document granularity if it ever surfaces.
type StructuralError struct {
	Node Kind
	Err  error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at %s node: %s", e.Node, e.Err)
}

func (e *StructuralError) Unwrap() error {
	return e.Err
}
