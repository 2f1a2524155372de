package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/pagetext/internal/document"
)

// ErrDuplicateOutput marks a batch entry whose output file name was already
// claimed by an earlier entry of the same batch.
var ErrDuplicateOutput = errors.New("duplicate output file")

// BatchResult is the outcome of one ExtractRequest in a batch.
type BatchResult struct {
	Request ExtractRequest
	File    document.OutputFile
	Err     error
}

// ExtractBatch runs each request as its own pipeline, at most concurrency at
// a time (Config.BatchConcurrency when concurrency <= 0). A failing request
// does not stop the others. Results are returned in request order.
func (a *App) ExtractBatch(ctx context.Context, reqs []ExtractRequest, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = a.cfg.BatchConcurrency
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}

	results := make([]BatchResult, len(reqs))
	claimed := make(map[string]int, len(reqs))

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for i, req := range reqs {
		results[i].Request = req
		t, err := planOutput(req)
		if err != nil {
			results[i].Err = err
			continue
		}
		// Two entries writing one file would race; keep the first.
		if first, ok := claimed[t.name]; ok {
			results[i].Err = fmt.Errorf("%w: %s also produced by entry %d", ErrDuplicateOutput, t.name, first+1)
			continue
		}
		claimed[t.name] = i

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].File, results[i].Err = a.run(ctx, req, t)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	log.Info().Int("total", len(reqs)).Int("failed", failed).Int("concurrency", concurrency).Msg("batch done")
	return results
}
