package documents

import "errors"

var (
	// ErrNotFound indicates the document does not exist for the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoThumbnail indicates the document has no stored thumbnail.
	ErrNoThumbnail = errors.New("thumbnail not found")
)
