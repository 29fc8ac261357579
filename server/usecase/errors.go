package usecase

import "errors"

var (
	// ErrAlreadyExists is returned when a primary-key or unique constraint
	// rejects an insert.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned for a missing row or a reference to one.
	ErrNotFound = errors.New("not found")

	// ErrAuthentication is returned when identify credentials do not match.
	ErrAuthentication = errors.New("authentication failed")

	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStore wraps store faults that are not constraint violations.
	ErrStore = errors.New("store failure")
)
