package pipeline

import "errors"

// ErrNoReport is returned by steps that need a report when the score
// step did not run.
var ErrNoReport = errors.New("no report to process")
