package service

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrInternal marks a failure of a collaborator (scorer, store). Its
	// details are not meant for clients.
	ErrInternal = errors.New("internal error")

	// ErrNoStore is returned when Predict runs without a store.
	ErrNoStore = errors.New("no store configured")
)
