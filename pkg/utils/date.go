package utils

import "time"

// TimeNowUTC returns the current time in UTC. All pipeline timestamps are
// kept timezone-aware in UTC before persistence.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}
