package urlutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	errs "imgharvest/pkg/errors"
)

// defaultBlocklist filters out ad, tracking, placeholder and static-asset
// image references by raw substring match before resolution.
var defaultBlocklist = []string{
	"adServer",
	"scorecardresearch.com",
	"1px",
	"avatar",
	"profile",
	"logo",
	"static",
	".svg",
}

type parseOptions struct {
	blocklist []string
}

// ParseOption customizes image extraction.
type ParseOption func(*parseOptions)

// WithBlocklist replaces the default substring blocklist.
func WithBlocklist(words []string) ParseOption {
	return func(o *parseOptions) {
		o.blocklist = words
	}
}

// ParseImages extracts every image reference with a non-empty src attribute
// from the given HTML markup, drops references matching the blocklist,
// resolves the remainder against baseURL and deduplicates by resolved value.
// Duplicates can appear both from repeated src attributes and from distinct
// relative references resolving to the same absolute URL, so deduplication
// happens after all transformations. The returned order is first-occurrence
// document order. Malformed markup is handled best-effort and never fails.
func ParseImages(markup, baseURL string, opts ...ParseOption) ([]string, error) {
	options := parseOptions{blocklist: defaultBlocklist}
	for _, opt := range opts {
		opt(&options)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, errs.NewParse(baseURL, "failed to parse markup", err)
	}

	seen := make(map[string]bool)
	var images []string

	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if src == "" || isBlocked(src, options.blocklist) {
			return
		}

		resolved, err := Resolve(src, baseURL)
		if err != nil || resolved == "" {
			return
		}

		if !seen[resolved] {
			seen[resolved] = true
			images = append(images, resolved)
		}
	})

	return images, nil
}

func isBlocked(src string, blocklist []string) bool {
	for _, word := range blocklist {
		if strings.Contains(src, word) {
			return true
		}
	}
	return false
}
