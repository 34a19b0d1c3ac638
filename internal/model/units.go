package model

import "fmt"

const (
	kibibyte = 1024
	mebibyte = 1024 * kibibyte
)

// FormatBytes renders a byte count the way impact strings show it:
// plain bytes below 1KB, whole kilobytes (truncated) below 1MB and
// megabytes with one decimal above that. 850000 renders as "830KB".
func FormatBytes(n int64) string {
	switch {
	case n < 0:
		return "-" + FormatBytes(-n)
	case n < kibibyte:
		return fmt.Sprintf("%dB", n)
	case n < mebibyte:
		return fmt.Sprintf("%dKB", n/kibibyte)
	default:
		return fmt.Sprintf("%.1fMB", float64(n)/mebibyte)
	}
}

// FormatDuration renders milliseconds as "850ms" or "1.2s".
func FormatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000)
}
