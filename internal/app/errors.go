package app

import "errors"

var (
	// ErrNotFound indicates a referenced book or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidWordType indicates a classification outside known/tracking/ignored.
	ErrInvalidWordType = errors.New("invalid word type")
)
