package audit

import "errors"

var (
	// ErrNilReport is returned when Detect is called without a report.
	ErrNilReport = errors.New("audit report is required")

	// ErrMalformedResults is returned when the raw results are not a JSON object.
	ErrMalformedResults = errors.New("raw results must be a JSON object")
)
