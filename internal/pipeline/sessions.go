// Package pipeline turns sorted usage events into billing sessions and
// period reports.
package pipeline

import (
	"math"
	"time"

	"ccmeter/internal/model"
)

// SessionWindow is the length of one billing window.
const SessionWindow = 5 * time.Hour

// BuildSessions partitions a chronologically sorted event stream into
// non-overlapping 5-hour windows. Windows are anchored to activity: each
// one starts at the top of the hour of its first event and runs exactly
// SessionWindow. An event at or past the current window's end closes it
// and opens a new window anchored to that event. Windows are never
// opened on a clock tick alone, so an idle stretch produces no session.
//
// The result is sorted by start time descending: index 0 is the current
// (most recent) session, index 1 the one before it. No events yields an
// empty slice, not an error.
func BuildSessions(events []model.UsageEvent) []model.Session {
	var sessions []model.Session
	var cur *model.Session

	for _, ev := range events {
		if cur == nil || !ev.Timestamp.Before(cur.EndTime) {
			if cur != nil && len(cur.Events) > 0 {
				sessions = append(sessions, *cur)
			}
			start := floorToHour(ev.Timestamp)
			cur = &model.Session{
				ID:        start.Format(time.RFC3339),
				StartTime: start,
				EndTime:   start.Add(SessionWindow),
			}
		}
		cur.Events = append(cur.Events, ev)
		cur.TotalTokens += ev.TotalTokens
		cur.TotalCost += ev.Cost
	}
	if cur != nil && len(cur.Events) > 0 {
		sessions = append(sessions, *cur)
	}

	// Chronological construction means reversing gives descending order.
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions
}

// floorToHour zeroes the sub-hour wall-clock components in the event's
// own location. time.Truncate would floor on absolute time instead,
// which drifts in zones with non-whole-hour offsets.
func floorToHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// BurnRate returns events per minute over the session window, rounded.
// Fewer than two events or a zero-length window reads as zero.
func BurnRate(s *model.Session) int {
	if s == nil || len(s.Events) < 2 {
		return 0
	}
	minutes := s.EndTime.Sub(s.StartTime).Minutes()
	if minutes == 0 {
		return 0
	}
	return int(math.Round(float64(len(s.Events)) / minutes))
}

// MinutesUntilReset returns the whole minutes until the session window
// ends, floored at zero for already-expired windows.
func MinutesUntilReset(s *model.Session, now time.Time) int {
	if s == nil {
		return 0
	}
	mins := int(math.Round(s.EndTime.Sub(now).Minutes()))
	if mins < 0 {
		return 0
	}
	return mins
}

// CountStartedSince counts sessions whose window opened at or after t.
func CountStartedSince(sessions []model.Session, t time.Time) int {
	n := 0
	for i := range sessions {
		if !sessions[i].StartTime.Before(t) {
			n++
		}
	}
	return n
}
