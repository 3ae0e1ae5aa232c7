package aggregate

import (
	"context"
	"sync"

	"github.com/erduoya77/obsidian-kanban/internal/board"
)

// docResult is the outcome of loading one candidate document.
type docResult struct {
	path    string
	board   *board.Board // nil when skipped or failed
	err     error        // recorded per-document failure
	tracked bool         // the document carries the aggregation marker
	empty   bool         // the document was empty
}

// docPool runs document loads with bounded concurrency. Results come
// back unordered; the scanner reorders them by path afterwards.
type docPool struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []docResult
	ctx        context.Context
}

func newDocPool(ctx context.Context, maxWorkers int) *docPool {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	return &docPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		ctx:        ctx,
		results:    make([]docResult, 0),
	}
}

// Submit schedules one document load. Blocks on a worker slot when the
// pool is at capacity.
func (p *docPool) Submit(path string, fn func() docResult) {
	select {
	case <-p.ctx.Done():
		return
	default:
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.semaphore <- struct{}{}:
			defer func() { <-p.semaphore }()
		case <-p.ctx.Done():
			return
		}

		result := fn()
		result.path = path

		p.mu.Lock()
		p.results = append(p.results, result)
		p.mu.Unlock()
	}()
}

// Wait blocks for all submitted loads and returns their results.
func (p *docPool) Wait() []docResult {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]docResult, len(p.results))
	copy(out, p.results)
	return out
}
