package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product cannot be resolved against the catalog
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCartNotFound is returned by repositories when no cart record exists for a user
	ErrCartNotFound = errors.New("cart not found")

	// ErrCacheMiss is returned when a cart is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrPersistenceFailure is returned when the durable store rejects a read or write
	ErrPersistenceFailure = errors.New("cart persistence failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
