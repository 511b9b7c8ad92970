package repository

import "errors"

var (
	// ErrNotFound covers both "no such row" and "row owned by someone else".
	ErrNotFound = errors.New("record not found")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAlreadyFinalized means a scan already left PROCESSING.
	ErrAlreadyFinalized = errors.New("scan already finalized")
)
