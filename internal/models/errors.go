package models

import (
	"errors"
	"fmt"
)

var (
	ErrUntrackedYear         = errors.New("year is not tracked")
	ErrCoordinatorOverloaded = errors.New("coordinator is too busy")
	ErrCoordinatorStopped    = errors.New("coordinator is stopped")
)

// UpstreamFetchError is returned when the analytics API could not be reached
// or its answer could not be decoded.
type UpstreamFetchError struct {
	Kind   string
	Year   int
	Offset int
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch %s %d offset %d: %v", e.Kind, e.Year, e.Offset, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

type MalformedCategoryError struct {
	Raw string
}

func (e *MalformedCategoryError) Error() string {
	return fmt.Sprintf("malformed category descriptor %q", e.Raw)
}
