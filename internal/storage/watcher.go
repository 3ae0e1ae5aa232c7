package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// ChangeKind classifies a document change notification.
type ChangeKind int

const (
	// Modified covers content writes.
	Modified ChangeKind = iota
	// Renamed covers renames, moves, and removals.
	Renamed
	// MetaChanged covers metadata-only changes.
	MetaChanged
)

func (k ChangeKind) String() string {
	switch k {
	case Modified:
		return "modified"
	case Renamed:
		return "renamed"
	case MetaChanged:
		return "meta-changed"
	}
	return fmt.Sprintf("change(%d)", int(k))
}

// Change is one document change notification.
type Change struct {
	Kind ChangeKind
	Path string
}

// Watcher turns filesystem events under a root into debounced Change
// notifications for markdown documents.
type Watcher struct {
	fsw      *fsnotify.Watcher
	events   <-chan fsnotify.Event
	errs     <-chan error
	changes  chan Change
	debounce time.Duration
	logger   *log.Logger
}

// NewWatcher creates a Watcher. fsnotify does not watch recursively,
// so the caller adds each directory of interest with Add. The
// debounce window collapses rapid event bursts per path.
func NewWatcher(debounce time.Duration, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}
	return &Watcher{
		fsw:      fsw,
		events:   fsw.Events,
		errs:     fsw.Errors,
		changes:  make(chan Change, 64),
		debounce: debounce,
		logger:   logger,
	}, nil
}

// Add registers a directory (or file) to watch.
func (w *Watcher) Add(path string) error {
	if err := w.fsw.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	return nil
}

// Changes is the notification stream. It closes when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run pumps fsnotify events into the change stream until ctx is done.
// Rapid successive events for the same path are coalesced into one
// notification per debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	if w.fsw != nil {
		defer w.fsw.Close()
	}

	pending := make(map[string]Change)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	timerActive := false

	flush := func() {
		for _, c := range pending {
			select {
			case w.changes <- c:
			case <-ctx.Done():
				return
			}
		}
		pending = make(map[string]Change)
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return ctx.Err()

		case ev, ok := <-w.events:
			if !ok {
				flush()
				return nil
			}
			if !strings.EqualFold(".md", extOf(ev.Name)) {
				continue
			}
			change, relevant := classify(ev)
			if !relevant {
				continue
			}
			pending[ev.Name] = change
			if !timerActive {
				timer.Reset(w.debounce)
				timerActive = true
			}

		case <-timer.C:
			timerActive = false
			flush()

		case err, ok := <-w.errs:
			if !ok {
				flush()
				return nil
			}
			// Watch errors are not fatal to the stream.
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func classify(ev fsnotify.Event) (Change, bool) {
	switch {
	case ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create):
		return Change{Kind: Modified, Path: ev.Name}, true
	case ev.Op.Has(fsnotify.Rename) || ev.Op.Has(fsnotify.Remove):
		return Change{Kind: Renamed, Path: ev.Name}, true
	case ev.Op.Has(fsnotify.Chmod):
		return Change{Kind: MetaChanged, Path: ev.Name}, true
	default:
		return Change{}, false
	}
}

func extOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
