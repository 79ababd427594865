package report

import "errors"

// ErrUnknownFormat is returned by New for an unsupported format.
var ErrUnknownFormat = errors.New("unknown report format")

// ErrNilReport is returned when a nil report is written or saved.
var ErrNilReport = errors.New("report is nil")
