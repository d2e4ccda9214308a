package domain

import (
	"fmt"
	"math"
	"time"
)

const (
	msPerDay    = 86_400_000
	msPerHour   = 3_600_000
	msPerMinute = 60_000
	msPerSecond = 1_000
)

// Remaining is a countdown split into calendar-free components.
type Remaining struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	TotalMs int64 `json:"totalMs"`
}

// Done reports the zero state reached at or after the target.
func (r Remaining) Done() bool { return r.TotalMs == 0 }

// TimeRemaining splits target-now with truncating integer division.
// At or after target every component is zero.
func TimeRemaining(target, now time.Time) Remaining {
	total := target.Sub(now).Milliseconds()
	if total <= 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    total / msPerDay,
		Hours:   (total % msPerDay) / msPerHour,
		Minutes: (total % msPerHour) / msPerMinute,
		Seconds: (total % msPerMinute) / msPerSecond,
		TotalMs: total,
	}
}

// FormatDuration renders minutes as "1h 30m", "2h" or "45m".
// Minutes-only is the fallback, so 0 renders "0m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	h, m := minutes/60, minutes%60
	switch {
	case h > 0 && m > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case h > 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dm", m)
	}
}

// FormatTimeRemaining renders a countdown for a card label.
func FormatTimeRemaining(target, now time.Time) string {
	r := TimeRemaining(target, now)
	switch {
	case r.Done():
		return "Started"
	case r.Days > 0:
		return fmt.Sprintf("%dd %dh %dm", r.Days, r.Hours, r.Minutes)
	case r.Hours > 0:
		return fmt.Sprintf("%dh %dm", r.Hours, r.Minutes)
	default:
		return fmt.Sprintf("%dm", r.Minutes)
	}
}

// roundHalfUp rounds halves toward +Inf, so -1.5 becomes -1.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RelativeTime renders date relative to now, e.g. "in 3 days" or "2 hours ago".
// Each unit is rounded from the previous one.
func RelativeTime(date, now time.Time) string {
	diffSec := roundHalfUp(float64(date.Sub(now).Milliseconds()) / 1000)
	diffMin := roundHalfUp(diffSec / 60)
	diffHr := roundHalfUp(diffMin / 60)
	diffDays := roundHalfUp(diffHr / 24)

	if diffSec < 0 {
		switch {
		case diffDays < -1:
			return fmt.Sprintf("%d days ago", int64(-diffDays))
		case diffHr < -1:
			return fmt.Sprintf("%d hours ago", int64(-diffHr))
		case diffMin < -1:
			return fmt.Sprintf("%d minutes ago", int64(-diffMin))
		default:
			return "Just now"
		}
	}

	switch {
	case diffDays > 1:
		return fmt.Sprintf("in %d days", int64(diffDays))
	case diffHr > 1:
		return fmt.Sprintf("in %d hours", int64(diffHr))
	case diffMin > 1:
		return fmt.Sprintf("in %d minutes", int64(diffMin))
	default:
		return "Just now"
	}
}

// DateLayout is the long display format used on contest cards.
const DateLayout = "Mon, Jan 2, 2006, 03:04 PM MST"

// FormatDate renders t in loc (UTC when nil).
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
