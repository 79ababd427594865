package database

import "errors"

var (
	// ErrNotFound is returned by Open when the database file is missing
	// and creation was not requested.
	ErrNotFound = errors.New("database not found")

	// ErrNilReport is returned when saving a nil report.
	ErrNilReport = errors.New("report is nil")
)
