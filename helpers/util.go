package helpers

import (
	"net/url"
	"strings"
)

// CategoryNameFromURL derives a display category name from the entry URL slug.
// The last path segment is split on "-" and the trailing id token dropped,
// e.g. ".../w/mens-shoes-nik1zy7ok" becomes "mens shoes".
func CategoryNameFromURL(entryURL string) string {
	parsed, err := url.Parse(entryURL)
	if err != nil {
		return ""
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	slug := segments[len(segments)-1]

	parts := strings.Split(slug, "-")
	if len(parts) < 2 {
		return slug
	}
	return strings.Join(parts[:len(parts)-1], " ")
}

// PathFromURL extracts the path component of a URL without the leading slash,
// the form the wall API expects in its "path" query parameter.
func PathFromURL(entryURL string) string {
	parsed, err := url.Parse(entryURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}
