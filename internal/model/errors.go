package model

import "errors"

var (
	// ErrNotFound covers both genuinely missing rows and rows owned by a
	// different user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a storage-level uniqueness constraint
	// rejects a write that slipped past the form-level check.
	ErrConflict = errors.New("conflict")
)
