package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors for loader state checks.
var (
	ErrNotReady       = errors.New("search index not ready")
	ErrAlreadyStarted = errors.New("search index load already started")
)

// FetchError reports a transport failure or a non-success response while
// retrieving the index document.
type FetchError struct {
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports an index document that could not be loaded.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
