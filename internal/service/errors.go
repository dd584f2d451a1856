package service

import "errors"

var (
	// ErrInvalidInput marks errors caused by the caller's request.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict marks a request that does not fit the record's state.
	ErrConflict = errors.New("conflict")
)
