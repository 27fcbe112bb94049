package content

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no content file backs the requested route.
	ErrNotFound = errors.New("content not found")
	// ErrInvalidSlug is returned for slugs or categories that are not URL-safe.
	ErrInvalidSlug = errors.New("invalid slug")
)

// ParseError reports a content file whose front matter could not be used.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse front matter: %v", e.Err)
	}
	return fmt.Sprintf("parse front matter in %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
