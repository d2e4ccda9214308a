package domain

import "time"

// ContestView is a contest enriched with the time labels a card renders.
type ContestView struct {
	Contest

	Bookmarked     bool       `json:"bookmarked"`
	DurationLabel  string     `json:"durationLabel"`
	StartsLabel    string     `json:"startsLabel"`
	StartDate      string     `json:"startDate"`
	Countdown      *Remaining `json:"countdown,omitempty"`
	CountdownTo    string     `json:"countdownTo,omitempty"` // "start" | "end"
	CountdownLabel string     `json:"countdownLabel,omitempty"`
}

// NewContestView derives the labels of c for now.
// Upcoming contests count down to start, ongoing ones to end.
func NewContestView(c Contest, now time.Time, bookmarked bool) ContestView {
	v := ContestView{
		Contest:       c,
		Bookmarked:    bookmarked,
		DurationLabel: FormatDuration(c.DurationMinutes),
		StartsLabel:   RelativeTime(c.StartTime, now),
		StartDate:     FormatDate(c.StartTime, nil),
	}

	switch c.Status {
	case StatusUpcoming:
		r := TimeRemaining(c.StartTime, now)
		v.Countdown = &r
		v.CountdownTo = "start"
		v.CountdownLabel = FormatTimeRemaining(c.StartTime, now)
	case StatusOngoing:
		r := TimeRemaining(c.EndTime, now)
		v.Countdown = &r
		v.CountdownTo = "end"
		v.CountdownLabel = FormatTimeRemaining(c.EndTime, now)
	}

	return v
}
