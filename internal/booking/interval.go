package booking

import "time"

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant. Touching endpoints do not
// count as overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ValidInterval reports whether [start, end) is a well formed interval.
func ValidInterval(start, end time.Time) bool {
	return !start.IsZero() && !end.IsZero() && start.Before(end)
}
