// Package batch runs the scrubber over an ordered set of documents.
package batch

import (
	"context"
	"sync"

	"github.com/younessemlali/gerflor-xml-cleaner/internal/scrub"
)

// Document is one named input.
type Document struct {
	Name string
	Data []byte
}

// Result is the outcome for one document. Exactly one of Data or Err is
// meaningful.
type Result struct {
	Name          string
	Data          []byte
	Modifications int
	Err           error
}

// Cleaned reports whether the document was transformed successfully.
func (r Result) Cleaned() bool { return r.Err == nil }

// Summary aggregates a batch outcome.
type Summary struct {
	Total         int
	Cleaned       int
	Failed        int
	Modifications int
}

// Summarize counts outcomes across results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Cleaned() {
			s.Cleaned++
			s.Modifications += r.Modifications
		} else {
			s.Failed++
		}
	}
	return s
}

// Runner processes batches with a fixed scrubber.
type Runner struct {
	scrubber *scrub.Scrubber
	workers  int
	progress func(done, total int)
}

// Option configures a Runner.
type Option func(*Runner)

// Workers sets the number of concurrent workers. Values below 2 keep
// processing fully synchronous.
func Workers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

// Progress registers a callback invoked after each document completes.
func Progress(fn func(done, total int)) Option {
	return func(r *Runner) { r.progress = fn }
}

// New creates a Runner around s.
func New(s *scrub.Scrubber, opts ...Option) *Runner {
	r := &Runner{scrubber: s, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process transforms each document and returns one result per input, in input
// order. A parse failure is recorded for its document and never aborts the
// batch; names are not deduplicated and nothing is retried. Cancelling ctx
// stops dispatching further documents; the undispatched ones report ctx.Err().
func (r *Runner) Process(ctx context.Context, docs []Document) []Result {
	results := make([]Result, len(docs))
	if len(docs) == 0 {
		return results
	}

	if r.workers < 2 {
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Name: doc.Name, Err: err}
				continue
			}
			results[i] = r.clean(doc)
			if r.progress != nil {
				r.progress(i+1, len(docs))
			}
		}
		return results
	}

	workers := r.workers
	if workers > len(docs) {
		workers = len(docs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.clean(docs[i])
				if r.progress != nil {
					mu.Lock()
					done++
					r.progress(done, len(docs))
					mu.Unlock()
				}
			}
		}()
	}

	dispatched := make([]bool, len(docs))
dispatch:
	for i := range docs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
			dispatched[i] = true
		}
	}
	close(jobs)
	wg.Wait()

	for i, doc := range docs {
		if !dispatched[i] {
			results[i] = Result{Name: doc.Name, Err: ctx.Err()}
		}
	}
	return results
}

func (r *Runner) clean(doc Document) Result {
	data, mods, err := r.scrubber.Clean(doc.Data)
	if err != nil {
		return Result{Name: doc.Name, Err: err}
	}
	return Result{Name: doc.Name, Data: data, Modifications: mods}
}
