package listing

import (
	"errors"
	"strings"

	"folio/internal/textutil"
)

var (
	errNoMarker    = errors.New("path marker not found")
	errNoSeparator = errors.New("no separator after slug")
	errEmptySlug   = errors.New("empty slug")
	errUnsafeSlug  = errors.New("slug is not a safe path segment")
)

// SlugFromURL extracts the path segment that follows marker, up to the next
// "/". With marker "manga/", ".../manga/chapter-12/" yields "chapter-12".
func SlugFromURL(href, marker string) (string, error) {
	idx := strings.Index(href, marker)
	if idx < 0 {
		return "", errNoMarker
	}
	rest := href[idx+len(marker):]
	end := strings.IndexByte(rest, '/')
	if end < 0 {
		return "", errNoSeparator
	}
	slug := strings.TrimSpace(rest[:end])
	if slug == "" {
		return "", errEmptySlug
	}
	if textutil.SanitizeSegment(slug) != slug {
		return "", errUnsafeSlug
	}
	return slug, nil
}
