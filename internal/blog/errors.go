package blog

import "errors"

var (
	ErrPathNotReadable = errors.New("path not readable")
	ErrMissingVersion  = errors.New("missing version")
	ErrInvalidVersion  = errors.New("invalid version")
	ErrMissingTitle    = errors.New("missing title")
	ErrMissingDate     = errors.New("missing date")
	ErrInvalidDate     = errors.New("invalid date")
	ErrRender          = errors.New("render failure")
)

// Error reports why the document at Path could not be built. Err is one of
// the sentinel errors above, possibly wrapping an underlying cause.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return "blog: " + e.Path + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
