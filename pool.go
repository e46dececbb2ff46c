package qbasher

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"sync"
)

// ═══════════════════════════════════════════════════════════════════════════════
// WORKER POOL (C6 batch mode)
// ═══════════════════════════════════════════════════════════════════════════════
// spec.md §5: any number of goroutines may query the shared, read-only
// mmap'd Index concurrently without locking; the only shared mutable state
// is the single output writer, which the pool protects with a mutex so
// lines never interleave. Grounded on Zeeeepa-blaze's goroutine-per-request
// HTTP handler pattern, retargeted from one-handler-per-request to a fixed
// worker count draining a line channel (spec.md §6's query_streams option).
// ═══════════════════════════════════════════════════════════════════════════════

// QueryFunc runs one query line against idx and returns its formatted result
// lines, ready to write out in order.
type QueryFunc func(ctx context.Context, idx *Index, opts *Options, line string) ([]string, error)

// Pool runs QueryFunc over every line of an input stream using opts.QueryStreams
// workers, writing results to a single output in submission order is NOT
// guaranteed (spec.md §5 says nothing about output order for batch mode;
// only serialization of writes is required) but each worker's own writes are
// atomic per line-group so results never interleave mid-line.
type Pool struct {
	opts *Options
	idx  *Index
	log  *slog.Logger
	fn   QueryFunc
}

// NewPool builds a worker pool bound to idx and opts.
func NewPool(idx *Index, opts *Options, log *slog.Logger, fn QueryFunc) *Pool {
	if log == nil {
		log = slog.Default()
	}
	return &Pool{opts: opts, idx: idx, log: log, fn: fn}
}

// Run reads newline-delimited query lines from in, dispatches them across
// opts.QueryStreams workers, and writes each query's result lines to out
// under a shared mutex. Returns the first worker error, if any, after
// draining all remaining lines (spec.md §7: one malformed query must not
// abort the batch).
func (p *Pool) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	workers := p.opts.QueryStreams
	if workers < 1 {
		workers = 1
	}

	lines := make(chan string, workers*4)
	var writeMu sync.Mutex
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for line := range lines {
				results, err := p.fn(ctx, p.idx, p.opts, line)
				if err != nil {
					p.log.Warn("query failed", "line", line, "error", err)
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
					continue
				}
				writeMu.Lock()
				for _, r := range results {
					io.WriteString(out, r)
					io.WriteString(out, "\n")
				}
				writeMu.Unlock()
			}
		}()
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxQueryLine*4)
feed:
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			break feed
		case lines <- scanner.Text():
		}
	}
	close(lines)
	wg.Wait()

	if err := scanner.Err(); err != nil {
		return err
	}
	return firstErr
}
