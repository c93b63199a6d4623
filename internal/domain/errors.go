package domain

import "errors"

var (
	// ErrMissingFields is returned when link, description or keywords is empty.
	ErrMissingFields = errors.New("missing required fields")

	// ErrUnknownCategory is returned for a category outside the closed set.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrQueryFailed wraps any store failure while listing a category.
	ErrQueryFailed = errors.New("bookmark query failed")
)
