// Package urlutil provides pure URL transformations for the harvest pipeline:
// resolving image references against their page URL, extracting image URLs
// from HTML markup, and encoding absolute URLs into filesystem names.
package urlutil

import (
	"net/url"

	errs "imgharvest/pkg/errors"
)

// Resolve resolves a possibly-relative reference against baseURL and strips
// any fragment. Query strings are preserved. Resolving an already-absolute
// URL against any base returns it unchanged (minus fragment).
func Resolve(ref, baseURL string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", errs.NewParse(baseURL, "invalid base URL", err)
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", errs.NewParse(ref, "invalid URL reference", err)
	}

	resolved := base.ResolveReference(u)
	resolved.Fragment = ""
	return resolved.String(), nil
}
