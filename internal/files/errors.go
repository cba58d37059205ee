package files

import "errors"

var (
	ErrMissingName      = errors.New("missing name")
	ErrMissingType      = errors.New("missing type")
	ErrMissingData      = errors.New("missing data")
	ErrParentNotFound   = errors.New("parent not found")
	ErrParentNotAFolder = errors.New("parent is not a folder")

	// ErrNotFound covers missing nodes and denied access alike, so a
	// caller can never tell a private file from an absent one.
	ErrNotFound = errors.New("file not found")

	ErrNotAFile = errors.New("a folder doesn't have content")
	ErrStorage  = errors.New("content store failure")
)
