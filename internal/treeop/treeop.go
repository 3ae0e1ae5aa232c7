// Package treeop implements generic path-addressed operations over the
// board tree: get, insert, remove, update, and move. Every operation
// is pure: it returns a new board and never mutates its input, so any
// number of readers may keep references to earlier values.
//
// A Path descends from the board root: [laneIndex] addresses a lane,
// [laneIndex, itemIndex] addresses an item.
package treeop

import (
	"errors"
	"fmt"

	"github.com/erduoya77/obsidian-kanban/internal/board"
)

// Path locates an entity by index descent from the board root.
type Path []int

// ErrBadPath reports a path whose depth or indices do not address an
// entity in the board.
var ErrBadPath = errors.New("path does not address an entity")

func (p Path) String() string {
	return fmt.Sprintf("%v", []int(p))
}

// Equal reports index-wise equality.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// SameParent reports whether two paths address siblings.
func (p Path) SameParent(q Path) bool {
	if len(p) != len(q) || len(p) == 0 {
		return false
	}
	return p[:len(p)-1].Equal(q[:len(q)-1])
}

// Last returns the final index of the path.
func (p Path) Last() int {
	return p[len(p)-1]
}

// Get returns the entity at path: a board.Lane for depth 1, a
// board.Item for depth 2.
func Get(b *board.Board, p Path) (any, error) {
	switch len(p) {
	case 1:
		if p[0] < 0 || p[0] >= len(b.Lanes) {
			return nil, fmt.Errorf("get %v: lane index out of range: %w", p, ErrBadPath)
		}
		return b.Lanes[p[0]], nil
	case 2:
		if p[0] < 0 || p[0] >= len(b.Lanes) {
			return nil, fmt.Errorf("get %v: lane index out of range: %w", p, ErrBadPath)
		}
		items := b.Lanes[p[0]].Items
		if p[1] < 0 || p[1] >= len(items) {
			return nil, fmt.Errorf("get %v: item index out of range: %w", p, ErrBadPath)
		}
		return items[p[1]], nil
	default:
		return nil, fmt.Errorf("get %v: depth %d: %w", p, len(p), ErrBadPath)
	}
}

// Insert places entities at path, shifting later siblings right. The
// path's last index is the insertion position and may equal the
// current sibling count (append). Identifier uniqueness within the
// receiving parent is enforced.
func Insert(b *board.Board, p Path, entities ...any) (*board.Board, error) {
	out := b.Clone()
	switch len(p) {
	case 1:
		lanes, err := toLanes(entities)
		if err != nil {
			return nil, fmt.Errorf("insert %v: %w", p, err)
		}
		updated, err := insertLanes(out.Lanes, p[0], lanes)
		if err != nil {
			return nil, fmt.Errorf("insert %v: %w", p, err)
		}
		out.Lanes = updated
		return out, nil
	case 2:
		if p[0] < 0 || p[0] >= len(out.Lanes) {
			return nil, fmt.Errorf("insert %v: lane index out of range: %w", p, ErrBadPath)
		}
		items, err := toItems(entities)
		if err != nil {
			return nil, fmt.Errorf("insert %v: %w", p, err)
		}
		updated, err := insertItems(out.Lanes[p[0]].Items, p[1], items)
		if err != nil {
			return nil, fmt.Errorf("insert %v: %w", p, err)
		}
		out.Lanes[p[0]].Items = updated
		return out, nil
	default:
		return nil, fmt.Errorf("insert %v: depth %d: %w", p, len(p), ErrBadPath)
	}
}

// Remove deletes the entity at path. An optional single replacement
// entity is left in the vacated slot instead, keeping sibling indices
// stable.
func Remove(b *board.Board, p Path, replacement ...any) (*board.Board, error) {
	if len(replacement) > 1 {
		return nil, fmt.Errorf("remove %v: at most one replacement", p)
	}
	out := b.Clone()
	switch len(p) {
	case 1:
		if p[0] < 0 || p[0] >= len(out.Lanes) {
			return nil, fmt.Errorf("remove %v: lane index out of range: %w", p, ErrBadPath)
		}
		if len(replacement) == 1 {
			lane, ok := replacement[0].(board.Lane)
			if !ok {
				return nil, fmt.Errorf("remove %v: replacement is %T, want board.Lane", p, replacement[0])
			}
			out.Lanes[p[0]] = lane
			return out, nil
		}
		out.Lanes = append(out.Lanes[:p[0]], out.Lanes[p[0]+1:]...)
		return out, nil
	case 2:
		if p[0] < 0 || p[0] >= len(out.Lanes) {
			return nil, fmt.Errorf("remove %v: lane index out of range: %w", p, ErrBadPath)
		}
		items := out.Lanes[p[0]].Items
		if p[1] < 0 || p[1] >= len(items) {
			return nil, fmt.Errorf("remove %v: item index out of range: %w", p, ErrBadPath)
		}
		if len(replacement) == 1 {
			item, ok := replacement[0].(board.Item)
			if !ok {
				return nil, fmt.Errorf("remove %v: replacement is %T, want board.Item", p, replacement[0])
			}
			items[p[1]] = item
			return out, nil
		}
		out.Lanes[p[0]].Items = append(items[:p[1]], items[p[1]+1:]...)
		return out, nil
	default:
		return nil, fmt.Errorf("remove %v: depth %d: %w", p, len(p), ErrBadPath)
	}
}

// Update applies a partial patch to the entity at path. The patch is
// either a func(board.Lane) board.Lane or a func(board.Item)
// board.Item matching the path depth.
func Update(b *board.Board, p Path, patch any) (*board.Board, error) {
	out := b.Clone()
	switch len(p) {
	case 1:
		fn, ok := patch.(func(board.Lane) board.Lane)
		if !ok {
			return nil, fmt.Errorf("update %v: patch is %T, want func(board.Lane) board.Lane", p, patch)
		}
		if p[0] < 0 || p[0] >= len(out.Lanes) {
			return nil, fmt.Errorf("update %v: lane index out of range: %w", p, ErrBadPath)
		}
		out.Lanes[p[0]] = fn(out.Lanes[p[0]])
		return out, nil
	case 2:
		fn, ok := patch.(func(board.Item) board.Item)
		if !ok {
			return nil, fmt.Errorf("update %v: patch is %T, want func(board.Item) board.Item", p, patch)
		}
		if p[0] < 0 || p[0] >= len(out.Lanes) {
			return nil, fmt.Errorf("update %v: lane index out of range: %w", p, ErrBadPath)
		}
		items := out.Lanes[p[0]].Items
		if p[1] < 0 || p[1] >= len(items) {
			return nil, fmt.Errorf("update %v: item index out of range: %w", p, ErrBadPath)
		}
		items[p[1]] = fn(items[p[1]])
		return out, nil
	default:
		return nil, fmt.Errorf("update %v: depth %d: %w", p, len(p), ErrBadPath)
	}
}

// RemoveTransform is invoked on the entity being moved out. When it
// returns ok, the returned entity is left in the vacated slot (the
// item "forks" rather than moves).
type RemoveTransform func(entity any) (replacement any, ok bool)

// InsertTransform is invoked on the entity being moved in; its result
// is what actually lands at the destination.
type InsertTransform func(entity any) any

// Move relocates the entity at from to the position at to. Both paths
// must have the same depth. The to path is interpreted against the
// board as it was before the removal; when the source is removed
// (no replacement) from the same parent at a lower index, the
// effective insertion index shifts down by one.
func Move(b *board.Board, from, to Path, onRemove RemoveTransform, onInsert InsertTransform) (*board.Board, error) {
	if len(from) != len(to) {
		return nil, fmt.Errorf("move %v -> %v: depth mismatch: %w", from, to, ErrBadPath)
	}

	entity, err := Get(b, from)
	if err != nil {
		return nil, fmt.Errorf("move %v -> %v: %w", from, to, err)
	}

	var replacement any
	replaced := false
	if onRemove != nil {
		replacement, replaced = onRemove(entity)
	}

	var removedBoard *board.Board
	if replaced {
		removedBoard, err = Remove(b, from, replacement)
	} else {
		removedBoard, err = Remove(b, from)
	}
	if err != nil {
		return nil, fmt.Errorf("move %v -> %v: %w", from, to, err)
	}

	inserted := entity
	if onInsert != nil {
		inserted = onInsert(entity)
	}

	dest := append(Path(nil), to...)
	// Removing the source slot shifts later siblings down by one, so a
	// same-parent destination beyond the source needs correcting. A
	// replacement keeps the slot occupied and needs no correction.
	if !replaced && from.SameParent(to) && to.Last() > from.Last() {
		dest[len(dest)-1]--
	}

	out, err := Insert(removedBoard, dest, inserted)
	if err != nil {
		return nil, fmt.Errorf("move %v -> %v: %w", from, to, err)
	}
	return out, nil
}

func toLanes(entities []any) ([]board.Lane, error) {
	lanes := make([]board.Lane, 0, len(entities))
	for _, e := range entities {
		lane, ok := e.(board.Lane)
		if !ok {
			return nil, fmt.Errorf("entity is %T, want board.Lane", e)
		}
		lanes = append(lanes, lane)
	}
	return lanes, nil
}

func toItems(entities []any) ([]board.Item, error) {
	items := make([]board.Item, 0, len(entities))
	for _, e := range entities {
		item, ok := e.(board.Item)
		if !ok {
			return nil, fmt.Errorf("entity is %T, want board.Item", e)
		}
		items = append(items, item)
	}
	return items, nil
}

func insertLanes(lanes []board.Lane, at int, add []board.Lane) ([]board.Lane, error) {
	if at < 0 || at > len(lanes) {
		return nil, fmt.Errorf("lane index out of range: %w", ErrBadPath)
	}
	seen := make(map[string]bool, len(lanes)+len(add))
	for _, l := range lanes {
		seen[l.ID] = true
	}
	for _, l := range add {
		if seen[l.ID] {
			return nil, fmt.Errorf("duplicate lane id %q", l.ID)
		}
		seen[l.ID] = true
	}
	out := make([]board.Lane, 0, len(lanes)+len(add))
	out = append(out, lanes[:at]...)
	out = append(out, add...)
	out = append(out, lanes[at:]...)
	return out, nil
}

func insertItems(items []board.Item, at int, add []board.Item) ([]board.Item, error) {
	if at < 0 || at > len(items) {
		return nil, fmt.Errorf("item index out of range: %w", ErrBadPath)
	}
	seen := make(map[string]bool, len(items)+len(add))
	for _, it := range items {
		seen[it.ID] = true
	}
	for _, it := range add {
		if seen[it.ID] {
			return nil, fmt.Errorf("duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
	}
	out := make([]board.Item, 0, len(items)+len(add))
	out = append(out, items[:at]...)
	out = append(out, add...)
	out = append(out, items[at:]...)
	return out, nil
}
