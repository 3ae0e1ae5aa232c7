package aggregate

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/erduoya77/obsidian-kanban/internal/board"
	"github.com/erduoya77/obsidian-kanban/internal/linkindex"
	"github.com/erduoya77/obsidian-kanban/internal/mdast"
	"github.com/erduoya77/obsidian-kanban/internal/settings"
	"github.com/erduoya77/obsidian-kanban/internal/storage"
)

// DocState tracks a document's lifecycle within an aggregation root.
type DocState int

const (
	// Unscanned is the implicit state of a document without the
	// aggregation marker; such documents are not retained in the
	// state map.
	Unscanned DocState = iota
	// Tracked marks a document whose frontmatter carries the marker.
	Tracked
	// TrackedErrored marks a tracked document whose last parse
	// failed. It remains eligible for the next rescan.
	TrackedErrored
)

func (s DocState) String() string {
	switch s {
	case Unscanned:
		return "unscanned"
	case Tracked:
		return "tracked"
	case TrackedErrored:
		return "tracked+errored"
	}
	return "unknown"
}

// DefaultMarkerKey is the frontmatter key marking a document for
// aggregation.
const DefaultMarkerKey = "kanban-plugin"

// scanCall is one in-flight scan; latecomers block on done and share
// the result instead of racing a second scan of the same root.
type scanCall struct {
	done   chan struct{}
	result *board.Board
	err    error
}

// Scanner aggregates the documents under one root into a synthesized
// board. At most one scan is in flight at a time; results apply in
// last-completed-of-the-latest-request order.
type Scanner struct {
	Root string

	store    storage.Store
	index    linkindex.Index
	resolver *settings.Resolver
	logger   *log.Logger
	notifier *board.Notifier

	markerKey   string
	concurrency int
	buildOpts   []board.BuilderOption

	mu         sync.Mutex
	states     map[string]DocState
	origins    map[string]*board.Board // per-document boards from the applied scan
	latest     *board.Board
	inflight   *scanCall
	reqGen     uint64
	appliedGen uint64
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithMarkerKey overrides the frontmatter key that marks aggregation
// roots.
func WithMarkerKey(key string) ScannerOption {
	return func(s *Scanner) { s.markerKey = key }
}

// WithConcurrency bounds parallel document loads during a scan.
func WithConcurrency(n int) ScannerOption {
	return func(s *Scanner) { s.concurrency = n }
}

// WithBuilderOptions forwards options to the per-document board
// builders (test id generators, extra title post-processors).
func WithBuilderOptions(opts ...board.BuilderOption) ScannerOption {
	return func(s *Scanner) { s.buildOpts = append(s.buildOpts, opts...) }
}

// NewScanner creates a Scanner over one aggregation root.
func NewScanner(root string, store storage.Store, index linkindex.Index, resolver *settings.Resolver, logger *log.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		Root:        root,
		store:       store,
		index:       index,
		resolver:    resolver,
		logger:      logger,
		notifier:    board.NewNotifier(0),
		markerKey:   DefaultMarkerKey,
		concurrency: 4,
		states:      make(map[string]DocState),
		origins:     make(map[string]*board.Board),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers an observer for applied scan results. Rapid
// successive applications coalesce into one notification.
func (s *Scanner) Subscribe(fn board.Observer) (unsubscribe func()) {
	return s.notifier.Subscribe(fn)
}

// Close stops notification delivery.
func (s *Scanner) Close() {
	s.notifier.Close()
}

// Latest returns the most recently applied synthesized board, nil
// before the first successful scan.
func (s *Scanner) Latest() *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// State returns the tracked state of a document.
func (s *Scanner) State(path string) DocState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[path]
}

// Origin returns the per-document board from the applied scan, nil
// when the document is not tracked.
func (s *Scanner) Origin(path string) *board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.origins[path]
}

// Scan aggregates the root. A call arriving while a scan is in flight
// awaits that scan and shares its result rather than starting a
// second scan.
func (s *Scanner) Scan(ctx context.Context) (*board.Board, error) {
	s.mu.Lock()
	if call := s.inflight; call != nil {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.result, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &scanCall{done: make(chan struct{})}
	s.inflight = call
	s.reqGen++
	gen := s.reqGen
	s.mu.Unlock()

	synthesized, origins, states, err := s.scan(ctx)

	s.mu.Lock()
	s.inflight = nil
	if err == nil {
		if gen > s.appliedGen {
			s.appliedGen = gen
			s.latest = synthesized
			s.origins = origins
			s.states = states
			s.notifier.Publish(synthesized)
		} else {
			// A newer scan already completed; this result is stale
			// and is discarded rather than applied.
			synthesized = s.latest
		}
	}
	s.mu.Unlock()

	call.result = synthesized
	call.err = err
	close(call.done)
	return synthesized, err
}

// scan does the actual work: enumerate, load in parallel, assemble in
// path order. Per-document failures are contained as recorded errors;
// only enumeration failure is fatal to the scan.
func (s *Scanner) scan(ctx context.Context) (*board.Board, map[string]*board.Board, map[string]DocState, error) {
	runID := uuid.NewString()
	s.logger.Debug("scan start", "root", s.Root, "run", runID)

	paths, err := s.store.List(ctx, s.Root)
	if err != nil {
		return nil, nil, nil, err
	}

	pool := newDocPool(ctx, s.concurrency)
	for _, path := range paths {
		p := path
		pool.Submit(p, func() docResult {
			return s.loadDocument(ctx, p)
		})
	}
	results := pool.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	synthesized := &board.Board{
		ID:       s.Root,
		Lanes:    []board.Lane{},
		Archive:  []board.Item{},
		DoneChar: board.DefaultDoneChar,
	}
	origins := make(map[string]*board.Board)
	states := make(map[string]DocState)

	for _, res := range results {
		prev := s.State(res.path)

		switch {
		case res.empty:
			// An empty document contributes nothing; its skip is
			// recorded so the synthesized board accounts for it.
			synthesized.Errors = append(synthesized.Errors, board.Error{
				Path: res.path,
				Err:  errEmptyDocument,
			})

		case res.err != nil:
			synthesized.Errors = append(synthesized.Errors, board.Error{
				Path: res.path,
				Err:  res.err,
			})
			if prev == Tracked || prev == TrackedErrored {
				states[res.path] = TrackedErrored
			}
			s.logger.Warn("document failed", "path", res.path, "err", res.err)

		case !res.tracked:
			// Marker absent: the document returns to unscanned by
			// omission from the state map.

		default:
			states[res.path] = Tracked
			origins[res.path] = res.board
			s.mergeDocument(synthesized, res.path, res.board)
		}
	}

	s.logger.Debug("scan done", "root", s.Root, "run", runID,
		"lanes", len(synthesized.Lanes), "errors", len(synthesized.Errors))
	return synthesized, origins, states, nil
}

var errEmptyDocument = errors.New("empty document skipped")

// loadDocument reads, parses, and builds one candidate document.
func (s *Scanner) loadDocument(ctx context.Context, path string) docResult {
	text, err := s.store.Read(ctx, path)
	if err != nil {
		return docResult{err: err}
	}
	if strings.TrimSpace(text) == "" {
		return docResult{empty: true}
	}

	doc, err := mdast.Parse(text, mdast.Options{
		Path:        path,
		DateTrigger: s.resolver.String(settings.KeyDateTrigger),
		TimeTrigger: s.resolver.String(settings.KeyTimeTrigger),
	})
	if err != nil {
		return docResult{err: err, tracked: true}
	}
	if !doc.Frontmatter.Has(s.markerKey) {
		return docResult{tracked: false}
	}

	builder := board.NewBuilder(s.resolver, s.index, s.buildOpts...)
	b, err := builder.Build(doc)
	if err != nil {
		return docResult{err: err, tracked: true}
	}
	return docResult{board: b, tracked: true}
}

// mergeDocument re-keys one document's lanes and items with composite
// identities and appends them to the synthesized board.
func (s *Scanner) mergeDocument(synthesized *board.Board, path string, src *board.Board) {
	for _, lane := range src.Lanes {
		merged := lane
		merged.ID = LaneKey{Doc: path, Lane: lane.ID}.String()
		merged.Items = make([]board.Item, len(lane.Items))
		for i, item := range lane.Items {
			merged.Items[i] = item
			merged.Items[i].ID = ItemKey{Doc: path, Lane: lane.ID, Item: item.ID}.String()
		}
		synthesized.Lanes = append(synthesized.Lanes, merged)
	}
	synthesized.Errors = append(synthesized.Errors, src.Errors...)
}
