package pipeline

import "errors"

var (
	// ErrNoAudit is returned by steps that need an audit report when none
	// has been loaded.
	ErrNoAudit = errors.New("no audit report loaded")

	// ErrNoArchive is returned when an archive source is used without an
	// audit archive.
	ErrNoArchive = errors.New("audit archive is not available")

	// ErrInvalidArchiveRef is returned for an archive source whose
	// identifier is not a positive integer.
	ErrInvalidArchiveRef = errors.New("invalid archive reference")
)
