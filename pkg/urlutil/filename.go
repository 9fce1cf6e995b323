package urlutil

import (
	"net/url"
	"path"
	"strings"

	errs "imgharvest/pkg/errors"
)

// delimiter joins the hostname, path and query components of an encoded filename.
const delimiter = "--"

// Convert maps an absolute image URL to a (directory, filename) pair suitable
// for filesystem storage. The directory is the URL's hostname. The filename
// keeps the file extension in terminal position so later extension repair
// still works:
//
//	https://sub.example.org/images/Ex.jpg?p=1
//	=> ("sub.example.org", "sub.example.org--images%2FEx--p%3D1.jpg")
//
// Distinct URLs sharing a hostname can in principle encode to the same
// filename; collisions are not detected and the last write wins.
func Convert(rawURL string) (directory, filename string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", errs.NewParse(rawURL, "invalid image URL", err)
	}

	host := u.Hostname()
	if host == "" {
		return "", "", errs.NewParse(rawURL, "image URL has no hostname", nil)
	}

	trimmed := strings.TrimPrefix(u.Path, "/")
	return host, url.QueryEscape(recompose(host, trimmed, u.RawQuery)), nil
}

// recompose joins hostname and path, splicing a non-empty query string in
// front of the path's final suffix so the extension remains recoverable.
func recompose(hostname, p, query string) string {
	if query == "" {
		return hostname + delimiter + p
	}

	ext := path.Ext(p)
	stem := strings.TrimSuffix(p, ext)
	return hostname + delimiter + stem + delimiter + query + ext
}
