package domain

import "time"

// Status is the lifecycle phase of a contest relative to now.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
)

// Statuses returns every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusUpcoming, StatusOngoing, StatusCompleted}
}

// ParseStatus maps a label to a Status.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUpcoming, StatusOngoing, StatusCompleted:
		return Status(s), true
	}
	return "", false
}

// DeriveStatus classifies now against the half-open window [start, end).
func DeriveStatus(start, end, now time.Time) Status {
	switch {
	case now.Before(start):
		return StatusUpcoming
	case now.Before(end):
		return StatusOngoing
	default:
		return StatusCompleted
	}
}

// At returns a copy of c with Status derived for now.
func (c Contest) At(now time.Time) Contest {
	c.Status = DeriveStatus(c.StartTime, c.EndTime, now)
	return c
}

// DeriveAll returns a new slice with every status derived for now.
// The input is left untouched.
func DeriveAll(contests []Contest, now time.Time) []Contest {
	out := make([]Contest, len(contests))
	for i, c := range contests {
		out[i] = c.At(now)
	}
	return out
}

// NextTransition returns the earliest boundary strictly after now across the
// batch, or false when every contest is already completed.
func NextTransition(contests []Contest, now time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	for _, c := range contests {
		for _, edge := range [2]time.Time{c.StartTime, c.EndTime} {
			if !edge.After(now) {
				continue
			}
			if !found || edge.Before(next) {
				next = edge
				found = true
			}
		}
	}
	return next, found
}
