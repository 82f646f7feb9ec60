package utils

import "time"

// Now returns the current time in UTC, truncated to microseconds so values
// round-trip unchanged through postgres timestamp columns.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func NowPtr() *time.Time {
	now := Now()
	return &now
}
