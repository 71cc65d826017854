package rate

import "errors"

var (
	// ErrRateLimited is returned once an identifier exhausts its budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrBackendUnavailable wraps counter backend failures.
	ErrBackendUnavailable = errors.New("rate limit backend unavailable")
)
