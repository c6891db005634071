// Package timeutil handles the minutes-from-midnight clock the
// planner and simulator operate on.
package timeutil

import (
	"time"

	"github.com/fleetops/ride-dispatch/internal/logger"
)

const layout = "2006-01-02 15:04:05"

// ParseTimestamp parses a "YYYY-MM-DD HH:MM:SS" timestamp, falling
// back to the current wall-clock time (logged as a warning) on
// malformed input, matching the source data's own defensive parsing.
func ParseTimestamp(log *logger.Logger, s string) time.Time {
	t, err := time.Parse(layout, s)
	if err != nil {
		if log != nil {
			log.Warnw("failed to parse timestamp, falling back to now", "value", s, "error", err)
		}
		return time.Now()
	}
	return t
}

// MinutesFromMidnight converts a time to minutes elapsed since
// midnight of its own day.
func MinutesFromMidnight(t time.Time) float64 {
	return float64(t.Hour()*60 + t.Minute())
}

// PickupTimeMinutes parses a pickup timestamp directly into
// minutes-from-midnight.
func PickupTimeMinutes(log *logger.Logger, s string) float64 {
	return MinutesFromMidnight(ParseTimestamp(log, s))
}

// TravelTimeMinutes converts a distance in kilometres to travel time
// in minutes at the configured average speed.
func TravelTimeMinutes(km, avgSpeedKMH float64) float64 {
	return (km / avgSpeedKMH) * 60.0
}
