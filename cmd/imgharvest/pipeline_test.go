package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgharvest/pkg/download"
	"imgharvest/pkg/harvest"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/store"
)

// TestPipelineEndToEnd runs the full harvest-mix-download pipeline against a
// mock site: two pages with images, one failing page and one broken image.
func TestPipelineEndToEnd(t *testing.T) {
	var pngPayload bytes.Buffer
	require.NoError(t, png.Encode(&pngPayload, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page-one":
			fmt.Fprint(w, `<html>
				<img src="/img/a.png">
				<img src="/img/broken.png">
				<img src="/img/b.png">
			</html>`)
		case "/page-two":
			fmt.Fprint(w, `<html><img src="/img/c.png"></html>`)
		case "/page-down":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/img/broken.png":
			w.Header().Set("Content-Type", "image/png")
			fmt.Fprint(w, "corrupt bytes")
		default:
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngPayload.Bytes())
		}
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	fetcher := harvest.NewFetcher(5*time.Second, "imgharvest-test/1.0", log)
	harvester := harvest.NewHarvester(fetcher, 4, log)

	pages := []string{
		server.URL + "/page-one",
		server.URL + "/page-down",
		server.URL + "/page-two",
	}

	ctx := context.Background()
	results := harvester.HarvestAll(ctx, pages)
	require.Len(t, results, 2, "the failed page is excluded")

	candidates := harvest.Mix(results)
	require.Len(t, candidates, 4)
	// Round-robin: page-one and page-two alternate before page-one's tail.
	assert.Equal(t, server.URL+"/page-one", candidates[0].PageURL)
	assert.Equal(t, server.URL+"/page-two", candidates[1].PageURL)

	originals := filepath.Join(t.TempDir(), "originals")
	output := filepath.Join(t.TempDir(), "output")
	writer := store.NewWriter(fetcher, originals, output, log)
	batcher := download.NewBatcher(writer, 4, log)

	// Target 3 of 4 candidates; the broken image fails mid-window, so the
	// batch loop must pull in the remaining fresh candidate to reach the
	// target.
	summary := batcher.Run(ctx, candidates, 3)

	assert.Equal(t, download.OutcomeComplete, summary.Outcome)
	assert.Equal(t, 3, summary.Successes)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 4, summary.Attempted)

	// The broken image reached the originals tree before failing to decode,
	// so originals holds one file more than the rotated output tree.
	assert.Len(t, hostnameFiles(t, originals), 4)
	assert.Len(t, hostnameFiles(t, output), 3)
}

// hostnameFiles returns the filenames under the single hostname directory of
// a storage root.
func hostnameFiles(t *testing.T, root string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "expected one hostname directory under %s", root)
	files, err := os.ReadDir(filepath.Join(root, entries[0].Name()))
	require.NoError(t, err)
	return files
}

// TestPipelineNoCandidates covers the no-op run: pages harvest fine but
// yield nothing to download.
func TestPipelineNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><p>plain text only</p></html>`)
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	fetcher := harvest.NewFetcher(5*time.Second, "imgharvest-test/1.0", log)
	harvester := harvest.NewHarvester(fetcher, 2, log)

	ctx := context.Background()
	results := harvester.HarvestAll(ctx, []string{server.URL})
	candidates := harvest.Mix(results)
	require.Empty(t, candidates)

	writer := store.NewWriter(fetcher, t.TempDir(), t.TempDir(), log)
	summary := download.NewBatcher(writer, 2, log).Run(ctx, candidates, 5)

	assert.Equal(t, download.OutcomeEmpty, summary.Outcome)
	assert.Zero(t, summary.Attempted)
}
