package domain

import "time"

type ScheduleState string

const (
	ScheduleIdle    ScheduleState = "idle"
	ScheduleRunning ScheduleState = "running"
)

// AllowedIntervals lists the polling intervals the scheduler accepts, in minutes.
var AllowedIntervals = []int{5, 15, 30, 60}

func IntervalAllowed(minutes int) bool {
	for _, m := range AllowedIntervals {
		if m == minutes {
			return true
		}
	}
	return false
}

type ScheduleStatus struct {
	State       ScheduleState
	Interval    time.Duration
	Cycles      int64
	LastCycleAt *time.Time
	// Outcome of the most recent completed cycle.
	LastReports int
	LastFailed  int
	LastChanged int
}
