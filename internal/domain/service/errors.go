package service

import "errors"

var (
	// ErrNilListing is returned when an event carries no listing snapshot.
	ErrNilListing = errors.New("nil listing")

	// ErrPersistence wraps blob store read and write failures.
	ErrPersistence = errors.New("persistence failure")

	// ErrMalformedState wraps blobs that were read but could not be decoded.
	ErrMalformedState = errors.New("malformed persisted state")
)
