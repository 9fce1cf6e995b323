package harvest

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"imgharvest/pkg/logger"
	"imgharvest/pkg/urlutil"
)

// PageFetcher fetches one URL and returns its response
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Response, error)
}

// PageImages is the successful harvest result for one webpage: the page URL
// and its canonical image URLs. A page that yielded zero images is a valid
// result and still takes part in mixing.
type PageImages struct {
	PageURL string
	Images  []string
}

// Harvester fetches webpages and extracts their image URLs
type Harvester struct {
	fetcher       PageFetcher
	maxConcurrent int64
	parseOpts     []urlutil.ParseOption
	logger        logger.Logger
}

// NewHarvester creates a new Harvester
func NewHarvester(fetcher PageFetcher, maxConcurrent int, log logger.Logger, parseOpts ...urlutil.ParseOption) *Harvester {
	if log == nil {
		log = logger.GetLogger()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &Harvester{
		fetcher:       fetcher,
		maxConcurrent: int64(maxConcurrent),
		parseOpts:     parseOpts,
		logger:        log,
	}
}

// Harvest fetches one webpage and returns its canonical image URL list.
// Relative references are resolved against the final post-redirect URL.
func (h *Harvester) Harvest(ctx context.Context, pageURL string) ([]string, error) {
	resp, err := h.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	images, err := urlutil.ParseImages(string(resp.Body), resp.FinalURL, h.parseOpts...)
	if err != nil {
		return nil, err
	}

	return images, nil
}

// harvestOutcome pairs one page's result with its input position
type harvestOutcome struct {
	images []string
	err    error
}

// HarvestAll harvests every page concurrently and returns the per-page
// results in input order. A failure on one page never cancels or delays the
// others; failed pages are logged and excluded from the result, while pages
// that succeeded with zero images are kept with an empty list. Concurrency
// is bounded by the configured ceiling.
func (h *Harvester) HarvestAll(ctx context.Context, pageURLs []string) []PageImages {
	outcomes := make([]harvestOutcome, len(pageURLs))

	sem := semaphore.NewWeighted(h.maxConcurrent)
	var wg sync.WaitGroup

	for i, pageURL := range pageURLs {
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = harvestOutcome{err: err}
			continue
		}

		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			defer sem.Release(1)

			images, err := h.Harvest(ctx, pageURL)
			outcomes[i] = harvestOutcome{images: images, err: err}
		}(i, pageURL)
	}

	wg.Wait()

	results := make([]PageImages, 0, len(pageURLs))
	for i, pageURL := range pageURLs {
		out := outcomes[i]
		if out.err != nil {
			h.logger.WithError(out.err).WithField("page_url", pageURL).Error("Harvest failed")
			continue
		}
		h.logger.InfoWithFields("Harvest completed", map[string]interface{}{
			"page_url":    pageURL,
			"image_count": len(out.images),
		})
		results = append(results, PageImages{PageURL: pageURL, Images: out.images})
	}

	return results
}
