package atlas

import (
	"errors"
	"fmt"
)

// Sentinel errors for the atlas package.
var (
	// ErrInvalidHandle is returned when a handle was never issued or has
	// already been freed.
	ErrInvalidHandle = errors.New("atlas: invalid handle")

	// ErrTooLarge is returned when a requested region exceeds the page size.
	ErrTooLarge = errors.New("atlas: region larger than page")

	// ErrInvalidSize is returned for non-positive region sizes.
	ErrInvalidSize = errors.New("atlas: invalid region size")

	// ErrAtlasFull is returned when every page is full and MaxPages is reached.
	ErrAtlasFull = errors.New("atlas: all pages are full")

	// ErrShortBuffer is returned when a pixel slice holds fewer than
	// width*height values.
	ErrShortBuffer = errors.New("atlas: pixel buffer too short")

	// ErrPageOutOfRange is returned by diagnostic calls for a bad page index.
	ErrPageOutOfRange = errors.New("atlas: page index out of range")

	// ErrClosed is returned when operating on a closed manager.
	ErrClosed = errors.New("atlas: manager is closed")
)

// HandleError reports an operation on a handle that is not live.
type HandleError struct {
	Op     string
	Handle Handle
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("atlas: %s: invalid handle %d", e.Op, e.Handle)
}

// Unwrap returns ErrInvalidHandle.
func (e *HandleError) Unwrap() error { return ErrInvalidHandle }

// SizeError reports a region size the manager cannot allocate.
type SizeError struct {
	Width, Height int
	PageSize      int
	Err           error // ErrTooLarge or ErrInvalidSize
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v: %dx%d (page size %d)", e.Err, e.Width, e.Height, e.PageSize)
}

func (e *SizeError) Unwrap() error { return e.Err }

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "atlas: invalid config." + e.Field + ": " + e.Reason
}
