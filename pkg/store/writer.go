// Package store downloads one image candidate, writes the original payload
// and a 180-degree-rotated copy into two parallel directory trees.
package store

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	errs "imgharvest/pkg/errors"
	"imgharvest/pkg/fsutil"
	"imgharvest/pkg/harvest"
	"imgharvest/pkg/logger"
	"imgharvest/pkg/urlutil"
)

// Status tracks how far one candidate made it through the download pipeline.
// It only ever advances: NotProcessed, then Downloaded once the original is
// on disk, then Processed once the rotated copy is on disk.
type Status int

const (
	StatusNotProcessed Status = iota
	StatusDownloaded
	StatusProcessed
)

func (s Status) String() string {
	switch s {
	case StatusDownloaded:
		return "downloaded"
	case StatusProcessed:
		return "processed"
	default:
		return "not_processed"
	}
}

// Result is the terminal outcome of one candidate's journey. On failure Err
// is set and Status reports the last stage that completed.
type Result struct {
	Candidate harvest.Candidate
	Directory string
	Filename  string
	Status    Status
	Err       error
}

// Ok reports whether the candidate completed the full pipeline.
func (r Result) Ok() bool {
	return r.Err == nil && r.Status == StatusProcessed
}

// ImageFetcher fetches one image URL
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*harvest.Response, error)
}

// Writer downloads images and persists the original and rotated copies
type Writer struct {
	fetcher       ImageFetcher
	originalsRoot string
	outputRoot    string
	logger        logger.Logger
}

// NewWriter creates a new Writer
func NewWriter(fetcher ImageFetcher, originalsRoot, outputRoot string, log logger.Logger) *Writer {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Writer{
		fetcher:       fetcher,
		originalsRoot: originalsRoot,
		outputRoot:    outputRoot,
		logger:        log,
	}
}

// preferredExtensions picks a single well-known extension per image media
// type; mime.ExtensionsByType is platform-dependent for the order it returns.
var preferredExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
	"image/tiff": ".tiff",
}

// DownloadAndRotate fetches one candidate, repairs its file extension from
// the response content type, writes the original under originalsRoot and the
// rotated copy under outputRoot. Every failure is terminal for this single
// candidate only.
func (w *Writer) DownloadAndRotate(ctx context.Context, c harvest.Candidate) Result {
	result := Result{Candidate: c, Status: StatusNotProcessed}

	directory, filename, err := urlutil.Convert(c.ImageURL)
	if err != nil {
		result.Err = err
		return result
	}
	result.Directory = directory
	result.Filename = filename

	resp, err := w.fetcher.Fetch(ctx, c.ImageURL)
	if err != nil {
		result.Err = err
		return result
	}

	result.Filename = repairExtension(filename, resp.ContentType)

	originalPath := filepath.Join(w.originalsRoot, result.Directory, result.Filename)
	if err := fsutil.WriteBinary(originalPath, resp.Body); err != nil {
		result.Err = errs.NewIO(c.ImageURL, "failed to write original", err)
		return result
	}
	result.Status = StatusDownloaded

	rotated, err := rotateEncoded(resp.Body)
	if err != nil {
		result.Err = errs.NewDecode(c.ImageURL, "failed to rotate image", err)
		return result
	}

	outputPath := filepath.Join(w.outputRoot, result.Directory, result.Filename)
	if err := fsutil.WriteBinary(outputPath, rotated); err != nil {
		result.Err = errs.NewIO(c.ImageURL, "failed to write rotated copy", err)
		return result
	}
	result.Status = StatusProcessed

	w.logger.DebugWithFields("Image stored", map[string]interface{}{
		"image_url": c.ImageURL,
		"directory": result.Directory,
		"filename":  result.Filename,
	})

	return result
}

// repairExtension appends the extension implied by the response content type
// when the encoded filename does not already carry a matching suffix, so the
// stored artifact stays openable by extension-aware tooling.
func repairExtension(filename, contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" {
		return filename
	}

	var candidates []string
	if preferred, ok := preferredExtensions[mediaType]; ok {
		candidates = append(candidates, preferred)
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil {
		candidates = append(candidates, exts...)
	}
	if len(candidates) == 0 {
		return filename
	}

	lower := strings.ToLower(filename)
	for _, ext := range candidates {
		if strings.HasSuffix(lower, ext) {
			return filename
		}
	}

	return filename + candidates[0]
}
