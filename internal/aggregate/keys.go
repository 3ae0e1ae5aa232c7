// Package aggregate scans many kanban documents into one synthesized
// board and reconciles edits made there back to each originating
// document. Synthesized entities carry composite identities that are
// the only mapping back to their origin.
package aggregate

import "strings"

// keySep separates composite key segments. The unit separator cannot
// appear in document paths or generated entity ids.
const keySep = "\x1f"

// LaneKey is the composite identity of an aggregated lane.
type LaneKey struct {
	Doc  string // origin document path
	Lane string // original lane id within that document
}

func (k LaneKey) String() string {
	return k.Doc + keySep + k.Lane
}

// ParseLaneKey splits an aggregated lane id. ok is false for ids that
// are not composite.
func ParseLaneKey(id string) (LaneKey, bool) {
	parts := strings.Split(id, keySep)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return LaneKey{}, false
	}
	return LaneKey{Doc: parts[0], Lane: parts[1]}, true
}

// ItemKey is the composite identity of an aggregated item.
type ItemKey struct {
	Doc  string
	Lane string
	Item string
}

func (k ItemKey) String() string {
	return k.Doc + keySep + k.Lane + keySep + k.Item
}

// ParseItemKey splits an aggregated item id.
func ParseItemKey(id string) (ItemKey, bool) {
	parts := strings.Split(id, keySep)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return ItemKey{}, false
	}
	return ItemKey{Doc: parts[0], Lane: parts[1], Item: parts[2]}, true
}
