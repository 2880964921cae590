package util

// Period identifiers are opaque ordered strings whose trailing digit run
// increments once per draw (e.g. "20260826-0412" -> "20260826-0413").

// NextPeriodID increments the trailing numeric run of a period identifier,
// preserving zero padding. Identifiers without a trailing digit are
// returned unchanged.
func NextPeriodID(id string) string {
	i := len(id)
	for i > 0 && id[i-1] >= '0' && id[i-1] <= '9' {
		i--
	}
	if i == len(id) {
		return id
	}
	digits := []byte(id[i:])
	for j := len(digits) - 1; j >= 0; j-- {
		if digits[j] < '9' {
			digits[j]++
			return id[:i] + string(digits)
		}
		digits[j] = '0'
	}
	// carry out of the leftmost digit widens the run
	return id[:i] + "1" + string(digits)
}

// PeriodsSequential reports whether next immediately follows prev.
func PeriodsSequential(prev, next string) bool {
	return prev != "" && NextPeriodID(prev) == next
}
