package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// ArchivePrefix marks a source that refers to an archived audit report.
const ArchivePrefix = "archive:"

// ArchiveSource returns the source string for an archived audit report.
func ArchiveSource(id int64) string {
	return ArchivePrefix + strconv.FormatInt(id, 10)
}

// ParseArchiveSource reports whether source refers to the archive and, if
// so, returns the archived report's identifier.
func ParseArchiveSource(source string) (int64, bool, error) {
	ref, ok := strings.CutPrefix(source, ArchivePrefix)
	if !ok {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, true, fmt.Errorf("%w: %q", ErrInvalidArchiveRef, source)
	}
	return id, true, nil
}
