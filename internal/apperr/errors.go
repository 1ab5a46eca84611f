// Package apperr holds the sentinel errors shared by the service and
// transport layers.
package apperr

import "errors"

var (
	// ErrNotFound means no eligible post or category matches the request.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument means a request parameter is malformed or out of range.
	ErrInvalidArgument = errors.New("invalid argument")
)
