package domain

import "errors"

var (
	// ErrInvalidTender is returned when the tender payload cannot be processed
	// (no items, or no items with a positive quantity).
	ErrInvalidTender = errors.New("tender payload is invalid")

	// ErrRepositoryUnavailable is returned when the catalog repository cannot
	// be reached or a lookup fails.
	ErrRepositoryUnavailable = errors.New("catalog repository unavailable")

	// ErrCacheMiss is returned when a candidate set is not cached.
	ErrCacheMiss = errors.New("cache miss")
)
