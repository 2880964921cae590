package repository

import "time"

// Interval represents the draw cadence of a game.
type Interval string

const (
	Interval30s Interval = "30s"
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
)

// IsValidInterval returns true if iv is a supported draw interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval30s, Interval1m, Interval3m, Interval5m:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default draw interval.
func DefaultInterval() Interval { return Interval1m }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

// Duration returns the wall-clock length of one draw period.
func (iv Interval) Duration() time.Duration {
	switch iv {
	case Interval30s:
		return 30 * time.Second
	case Interval3m:
		return 3 * time.Minute
	case Interval5m:
		return 5 * time.Minute
	default:
		return time.Minute
	}
}
