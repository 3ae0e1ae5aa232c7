package aggregate

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/erduoya77/obsidian-kanban/internal/board"
)

// ReconciliationError reports an origin document that vanished between
// the scan and the reconciliation of an edit. The document's write is
// skipped; other documents still reconcile.
type ReconciliationError struct {
	Doc string
	Err error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile %s: %s", e.Doc, e.Err)
}

func (e *ReconciliationError) Unwrap() error { return e.Err }

// Reconcile splits an edited synthesized board back to its origin
// documents: lanes group by origin, each document's board is rebuilt
// by matching composite keys back to original identities, and every
// affected document is serialized and persisted independently. A full
// rescan then converges in-memory state with on-disk truth.
//
// Per-document failures are returned in errs; they never abort the
// remaining documents. The rescanned synthesized board is returned on
// success of the final scan.
func (s *Scanner) Reconcile(ctx context.Context, edited *board.Board) (*board.Board, []error) {
	var errs []error

	// Group aggregated lanes by origin document, preserving their
	// order within each group.
	docOrder := make([]string, 0)
	byDoc := make(map[string][]board.Lane)
	for _, lane := range edited.Lanes {
		key, ok := ParseLaneKey(lane.ID)
		if !ok {
			errs = append(errs, fmt.Errorf("lane %q: not a composite id", lane.ID))
			continue
		}
		if _, seen := byDoc[key.Doc]; !seen {
			docOrder = append(docOrder, key.Doc)
		}
		byDoc[key.Doc] = append(byDoc[key.Doc], lane)
	}

	for _, doc := range docOrder {
		origin := s.Origin(doc)
		if origin == nil {
			errs = append(errs, &ReconciliationError{
				Doc: doc,
				Err: fmt.Errorf("origin document not tracked by the applied scan"),
			})
			continue
		}

		rebuilt := rebuildOrigin(doc, origin, byDoc[doc])
		text, err := board.Serialize(rebuilt)
		if err != nil {
			errs = append(errs, &ReconciliationError{Doc: doc, Err: err})
			continue
		}
		// A document the edit never touched rebuilds identically to
		// its applied origin; skip the write so untouched documents
		// keep their bytes, mtime, and watchers quiet.
		before, err := board.Serialize(origin)
		if err != nil {
			errs = append(errs, &ReconciliationError{Doc: doc, Err: err})
			continue
		}
		if text == before {
			s.logger.Debug("untouched", "doc", doc)
			continue
		}
		if err := s.store.Write(ctx, doc, text); err != nil {
			errs = append(errs, &ReconciliationError{Doc: doc, Err: err})
			continue
		}
		s.logger.Info("reconciled", "doc", doc, "lanes", len(byDoc[doc]))
	}

	// Converge by full rescan rather than incremental patching.
	rescanned, err := s.Scan(ctx)
	if err != nil {
		errs = append(errs, err)
		return nil, errs
	}
	return rescanned, errs
}

// rebuildOrigin reconstructs one document's board from its aggregated
// lanes. An aggregated entity whose composite key matches nothing in
// the origin board is treated as newly created there, never as an
// edit to an unrelated entity.
func rebuildOrigin(doc string, origin *board.Board, lanes []board.Lane) *board.Board {
	out := origin.Clone()
	out.Lanes = make([]board.Lane, 0, len(lanes))

	for _, agg := range lanes {
		key, _ := ParseLaneKey(agg.ID)

		laneID := key.Lane
		originLane := origin.Lane(laneID)
		if originLane == nil {
			// No match: a lane created in the aggregated view.
			laneID = uuid.NewString()
		}

		lane := board.Lane{
			ID:             laneID,
			Title:          agg.Title,
			CompleteMarker: agg.CompleteMarker,
			Cap:            agg.Cap,
			Items:          make([]board.Item, 0, len(agg.Items)),
		}

		for _, aggItem := range agg.Items {
			item := aggItem
			itemKey, ok := ParseItemKey(aggItem.ID)
			if ok && itemKey.Doc == doc && originHasItem(origin, itemKey.Lane, itemKey.Item) {
				// The full composite key matches this document: same
				// entity, possibly moved between its lanes.
				item.ID = itemKey.Item
			} else {
				// Foreign or unmatched key: new item in this document.
				item.ID = uuid.NewString()
			}
			lane.Items = append(lane.Items, item)
		}

		out.Lanes = append(out.Lanes, lane)
	}

	return out
}

func originHasItem(origin *board.Board, laneID, itemID string) bool {
	lane := origin.Lane(laneID)
	if lane == nil {
		return false
	}
	for i := range lane.Items {
		if lane.Items[i].ID == itemID {
			return true
		}
	}
	return false
}
