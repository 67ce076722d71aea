// Package apperr holds the domain errors shared across layers.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidSlug   = errors.New("invalid slug")
)
