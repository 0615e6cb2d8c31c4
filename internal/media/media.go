// Package media provides the external image store used for car photos.
package media

import (
	"context"
	"io"
	"strings"
)

// Store is the external object store for uploaded images.
// Upload returns a stable retrievable URL; Delete removes an object by
// the public ID derived from that URL.
type Store interface {
	Upload(ctx context.Context, r io.Reader, filename string) (string, error)
	Delete(ctx context.Context, publicID string) error
}

// PublicIDFromURL derives the store's object identifier from a
// delivery URL: the last path segment with its extension stripped.
func PublicIDFromURL(url string) string {
	segment := url
	if i := strings.LastIndex(segment, "/"); i >= 0 {
		segment = segment[i+1:]
	}
	if i := strings.LastIndex(segment, "."); i >= 0 {
		segment = segment[:i]
	}
	return segment
}
