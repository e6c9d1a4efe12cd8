package domain

import "errors"

// Structural faults. These mean the input table or the aggregation is broken in a
// way the pipeline cannot repair locally; callers match them with errors.Is.
// Data-quality problems (bad timestamps, non-numeric readings) never produce errors.
var (
	ErrUnresolvedStation = errors.New("station identifier does not resolve to a city")
	ErrDuplicateColumn   = errors.New("duplicate station column")
	ErrDuplicateKey      = errors.New("duplicate aggregation key")
	ErrInvalidThreshold  = errors.New("threshold must be a finite number")
	ErrInvalidOffset     = errors.New("first data row must not be negative")
)
