package harvest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/logger"
)

func newTestFetcher() *Fetcher {
	return NewFetcher(5*time.Second, "imgharvest-test/1.0", logger.NewTestLogger())
}

func TestFetcherReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "imgharvest-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html></html>")
	}))
	defer server.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType)
	assert.Equal(t, server.URL, resp.FinalURL)
}

func TestFetcherNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errs.IsFetch(err))
}

func TestFetcherConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // force connection refused

	_, err := newTestFetcher().Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errs.IsFetch(err))
}

func TestFetcherFollowsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/old":
			http.Redirect(w, r, "/new/location", http.StatusMovedPermanently)
		case "/new/location":
			fmt.Fprint(w, "moved")
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	resp, err := newTestFetcher().Fetch(context.Background(), server.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/new/location", resp.FinalURL)
	assert.Equal(t, "moved", string(resp.Body))
}

func TestHarvestResolvesAgainstFinalURL(t *testing.T) {
	// The page redirects into a subdirectory; relative image references must
	// resolve against the post-redirect URL.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			http.Redirect(w, r, "/gallery/", http.StatusFound)
		case "/gallery/":
			fmt.Fprint(w, `<html><img src="pic.jpg"></html>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	h := NewHarvester(newTestFetcher(), 4, logger.NewTestLogger())
	images, err := h.Harvest(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, []string{server.URL + "/gallery/pic.jpg"}, images)
}

func TestHarvestPropagatesFetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	h := NewHarvester(newTestFetcher(), 4, logger.NewTestLogger())
	_, err := h.Harvest(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errs.IsFetch(err))
}

func TestHarvestAllIsolatesFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good":
			fmt.Fprint(w, `<html><img src="a.jpg"><img src="b.jpg"></html>`)
		case "/empty":
			fmt.Fprint(w, `<html><p>no images here</p></html>`)
		case "/bad":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	h := NewHarvester(newTestFetcher(), 4, logger.NewTestLogger())
	pages := []string{server.URL + "/good", server.URL + "/bad", server.URL + "/empty"}
	results := h.HarvestAll(context.Background(), pages)

	// The failed page is excluded entirely; the empty success is kept.
	require.Len(t, results, 2)
	assert.Equal(t, server.URL+"/good", results[0].PageURL)
	assert.Len(t, results[0].Images, 2)
	assert.Equal(t, server.URL+"/empty", results[1].PageURL)
	assert.Empty(t, results[1].Images)
}

func TestHarvestAllPreservesInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Earlier pages respond slower to prove order does not depend on
		// completion time.
		switch r.URL.Path {
		case "/p0":
			time.Sleep(60 * time.Millisecond)
		case "/p1":
			time.Sleep(30 * time.Millisecond)
		}
		fmt.Fprintf(w, `<html><img src="%s.jpg"></html>`, r.URL.Path)
	}))
	defer server.Close()

	h := NewHarvester(newTestFetcher(), 4, logger.NewTestLogger())
	pages := []string{server.URL + "/p0", server.URL + "/p1", server.URL + "/p2"}
	results := h.HarvestAll(context.Background(), pages)

	require.Len(t, results, 3)
	for i, page := range pages {
		assert.Equal(t, page, results[i].PageURL)
	}
}

func TestHarvestAllEmptyInput(t *testing.T) {
	h := NewHarvester(newTestFetcher(), 4, logger.NewTestLogger())
	results := h.HarvestAll(context.Background(), nil)
	assert.Empty(t, results)
}
