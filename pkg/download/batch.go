// Package download drives the image store writer over successive windows of
// the mixed candidate list until the target number of images is stored or
// the candidates run out.
package download

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"imgharvest/pkg/harvest"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/store"
)

// Outcome is the tri-state result of a run.
type Outcome int

const (
	// OutcomeComplete means the target count was reached.
	OutcomeComplete Outcome = iota
	// OutcomePartial means the candidates ran out before the target.
	OutcomePartial
	// OutcomeEmpty means there were no candidates to attempt at all.
	OutcomeEmpty
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomePartial:
		return "partial"
	default:
		return "empty"
	}
}

// Summary accumulates totals across all batches of one run.
type Summary struct {
	Errors    int
	Successes int
	Attempted int
	Outcome   Outcome
}

// ImageWriter persists one candidate through the download pipeline
type ImageWriter interface {
	DownloadAndRotate(ctx context.Context, c harvest.Candidate) store.Result
}

// Batcher runs the adaptive batched download loop
type Batcher struct {
	writer        ImageWriter
	maxConcurrent int64
	logger        logger.Logger
}

// NewBatcher creates a new Batcher
func NewBatcher(writer ImageWriter, maxConcurrent int, log logger.Logger) *Batcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Batcher{
		writer:        writer,
		maxConcurrent: int64(maxConcurrent),
		logger:        log,
	}
}

// Run slides a half-open window over candidates, initially [0, target).
// Each batch downloads its candidates concurrently and runs to completion
// before totals are examined. When the success total is still short of the
// target and candidates remain, the next window is sized to exactly the
// shortfall. Failed candidates are abandoned, never re-attempted; shortfall
// is always made up from fresh candidates further down the list.
func (b *Batcher) Run(ctx context.Context, candidates []harvest.Candidate, target int) Summary {
	summary := Summary{}

	if len(candidates) == 0 || target <= 0 {
		summary.Outcome = OutcomeEmpty
		b.logger.Warn("No candidates to download")
		return summary
	}

	from := 0
	to := min(target, len(candidates))

	for {
		b.logger.InfoWithFields("Starting download batch", map[string]interface{}{
			"from":          from,
			"to":            to,
			"success_total": summary.Successes,
			"error_total":   summary.Errors,
		})

		for _, result := range b.runBatch(ctx, candidates[from:to]) {
			summary.Attempted++
			if result.Ok() {
				summary.Successes++
			} else {
				summary.Errors++
				b.logger.WithError(result.Err).WithFields(map[string]interface{}{
					"image_url": result.Candidate.ImageURL,
					"page_url":  result.Candidate.PageURL,
					"status":    result.Status.String(),
				}).Error("Download failed")
			}
		}

		if summary.Successes >= target {
			summary.Outcome = OutcomeComplete
			break
		}
		if to >= len(candidates) {
			summary.Outcome = OutcomePartial
			break
		}

		from = to
		to = min(from+target-summary.Successes, len(candidates))
	}

	b.logger.InfoWithFields("Download loop finished", map[string]interface{}{
		"attempted": summary.Attempted,
		"successes": summary.Successes,
		"errors":    summary.Errors,
		"outcome":   summary.Outcome.String(),
	})

	return summary
}

// runBatch downloads one window of candidates concurrently. Every candidate
// runs to completion; one failure never cancels its siblings.
func (b *Batcher) runBatch(ctx context.Context, batch []harvest.Candidate) []store.Result {
	results := make([]store.Result, len(batch))

	sem := semaphore.NewWeighted(b.maxConcurrent)
	var wg sync.WaitGroup

	for i, candidate := range batch {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = store.Result{Candidate: candidate, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, candidate harvest.Candidate) {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = b.writer.DownloadAndRotate(ctx, candidate)
		}(i, candidate)
	}

	wg.Wait()
	return results
}
