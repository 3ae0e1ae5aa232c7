package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// newPipeWatcher builds a Watcher fed from plain channels instead of a
// live fsnotify instance.
func newPipeWatcher(logw *bytes.Buffer) (*Watcher, chan fsnotify.Event, chan error) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	w := &Watcher{
		events:   events,
		errs:     errs,
		changes:  make(chan Change, 64),
		debounce: 50 * time.Millisecond,
		logger:   log.New(logw),
	}
	return w, events, errs
}

func recvChange(t *testing.T, w *Watcher) Change {
	t.Helper()
	select {
	case c := <-w.Changes():
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
		return Change{}
	}
}

func TestWatcherRunDebounces(t *testing.T) {
	var buf bytes.Buffer
	w, events, _ := newPipeWatcher(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Two rapid writes to one path coalesce into one notification;
	// non-markdown files are ignored.
	events <- fsnotify.Event{Name: "board.md", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "board.md", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}

	c := recvChange(t, w)
	if c.Kind != Modified || c.Path != "board.md" {
		t.Errorf("change: %+v", c)
	}
	select {
	case extra := <-w.Changes():
		t.Errorf("unexpected second change: %+v", extra)
	case <-time.After(120 * time.Millisecond):
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
}

func TestWatcherRunLogsStreamErrors(t *testing.T) {
	var buf bytes.Buffer
	w, events, errs := newPipeWatcher(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	errs <- fmt.Errorf("event queue overflow")

	// The stream survives the error.
	events <- fsnotify.Event{Name: "other.md", Op: fsnotify.Remove}
	c := recvChange(t, w)
	if c.Kind != Renamed || c.Path != "other.md" {
		t.Errorf("change: %+v", c)
	}

	cancel()
	<-done
	if !strings.Contains(buf.String(), "event queue overflow") {
		t.Errorf("stream error not logged: %q", buf.String())
	}
}
