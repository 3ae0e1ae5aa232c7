package board

import (
	"time"

	"github.com/erduoya77/obsidian-kanban/internal/settings"
)

// ArchiveCompleted moves every checked item from every lane into the
// archive, returning a new board. When archive-with-date is set, the
// archive date is prepended to each archived title in the configured
// format; max-archive-size trims the oldest entries once exceeded.
func ArchiveCompleted(b *Board, r *settings.Resolver, now time.Time) *Board {
	out := b.Clone()

	withDate := r.Bool(settings.KeyArchiveWithDate)
	dateFormat := r.String(settings.KeyArchiveDateFormat)
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	for li := range out.Lanes {
		kept := out.Lanes[li].Items[:0:0]
		for _, item := range out.Lanes[li].Items {
			if !item.Checked {
				kept = append(kept, item)
				continue
			}
			out.Archive = append(out.Archive, archivedItem(item, withDate, dateFormat, now))
		}
		out.Lanes[li].Items = kept
	}

	trimArchive(out, r.Int(settings.KeyMaxArchiveSize))
	return out
}

// ArchiveItem moves a single item into the archive.
func ArchiveItem(b *Board, laneIdx, itemIdx int, r *settings.Resolver, now time.Time) *Board {
	out := b.Clone()
	if laneIdx < 0 || laneIdx >= len(out.Lanes) {
		return out
	}
	items := out.Lanes[laneIdx].Items
	if itemIdx < 0 || itemIdx >= len(items) {
		return out
	}

	withDate := r.Bool(settings.KeyArchiveWithDate)
	dateFormat := r.String(settings.KeyArchiveDateFormat)
	if dateFormat == "" {
		dateFormat = "2006-01-02"
	}

	out.Archive = append(out.Archive, archivedItem(items[itemIdx], withDate, dateFormat, now))
	out.Lanes[laneIdx].Items = append(items[:itemIdx], items[itemIdx+1:]...)

	trimArchive(out, r.Int(settings.KeyMaxArchiveSize))
	return out
}

func archivedItem(item Item, withDate bool, dateFormat string, now time.Time) Item {
	if !withDate {
		return item
	}
	stamp := now.Format(dateFormat)
	item.TitleRaw = stamp + " " + item.TitleRaw
	item.Title = stamp + " " + item.Title
	return item
}

// trimArchive drops the oldest entries beyond the configured cap.
// A cap of 0 means unbounded.
func trimArchive(b *Board, max int) {
	if max <= 0 || len(b.Archive) <= max {
		return
	}
	b.Archive = append([]Item(nil), b.Archive[len(b.Archive)-max:]...)
}
