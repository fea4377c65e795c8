package pipeline

import (
	"testing"
	"time"

	"ccmeter/internal/model"
)

func eventAt(t *testing.T, stamp string) model.UsageEvent {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		t.Fatalf("parse %q: %v", stamp, err)
	}
	return model.UsageEvent{
		Timestamp:   ts,
		Model:       "claude-3-5-haiku-20241022",
		TotalTokens: 100,
		Cost:        0.01,
	}
}

func TestBuildSessions_Empty(t *testing.T) {
	if got := BuildSessions(nil); len(got) != 0 {
		t.Errorf("sessions = %d, want 0", len(got))
	}
}

func TestBuildSessions_WindowBoundaries(t *testing.T) {
	// 10:05 anchors a [10:00, 15:00) window. 10:40 and 14:50 stay inside
	// it; 15:10 is past the end and opens [15:00, 20:00).
	events := []model.UsageEvent{
		eventAt(t, "2025-06-01T10:05:00Z"),
		eventAt(t, "2025-06-01T10:40:00Z"),
		eventAt(t, "2025-06-01T14:50:00Z"),
		eventAt(t, "2025-06-01T15:10:00Z"),
	}

	sessions := BuildSessions(events)
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	// Descending: index 0 is the most recent window.
	cur, prev := sessions[0], sessions[1]

	if want := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC); !cur.StartTime.Equal(want) {
		t.Errorf("current start = %v, want %v", cur.StartTime, want)
	}
	if want := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC); !cur.EndTime.Equal(want) {
		t.Errorf("current end = %v, want %v", cur.EndTime, want)
	}
	if len(cur.Events) != 1 {
		t.Errorf("current events = %d, want 1", len(cur.Events))
	}

	if want := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC); !prev.StartTime.Equal(want) {
		t.Errorf("previous start = %v, want %v", prev.StartTime, want)
	}
	if len(prev.Events) != 3 {
		t.Errorf("previous events = %d, want 3", len(prev.Events))
	}
}

func TestBuildSessions_EventExactlyAtEndOpensNewWindow(t *testing.T) {
	events := []model.UsageEvent{
		eventAt(t, "2025-06-01T10:00:00Z"),
		eventAt(t, "2025-06-01T15:00:00Z"), // == end of [10:00, 15:00)
	}

	sessions := BuildSessions(events)
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}
}

func TestBuildSessions_NoDropsNoDuplicates(t *testing.T) {
	events := []model.UsageEvent{
		eventAt(t, "2025-06-01T01:10:00Z"),
		eventAt(t, "2025-06-01T03:00:00Z"),
		eventAt(t, "2025-06-01T08:30:00Z"),
		eventAt(t, "2025-06-01T09:59:59Z"),
		eventAt(t, "2025-06-01T16:00:00Z"),
	}

	sessions := BuildSessions(events)

	total := 0
	for _, s := range sessions {
		total += len(s.Events)
		for _, ev := range s.Events {
			if ev.Timestamp.Before(s.StartTime) || !ev.Timestamp.Before(s.EndTime) {
				t.Errorf("event %v outside window [%v, %v)", ev.Timestamp, s.StartTime, s.EndTime)
			}
		}
	}
	if total != len(events) {
		t.Errorf("events across sessions = %d, want %d", total, len(events))
	}
}

func TestBuildSessions_WindowsNeverOverlap(t *testing.T) {
	events := []model.UsageEvent{
		eventAt(t, "2025-06-01T00:30:00Z"),
		eventAt(t, "2025-06-01T05:01:00Z"),
		eventAt(t, "2025-06-01T10:02:00Z"),
		eventAt(t, "2025-06-01T23:59:00Z"),
	}

	sessions := BuildSessions(events)
	for i := range sessions {
		for j := i + 1; j < len(sessions); j++ {
			a, b := sessions[i], sessions[j]
			if a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime) {
				t.Errorf("windows overlap: [%v,%v) and [%v,%v)", a.StartTime, a.EndTime, b.StartTime, b.EndTime)
			}
		}
	}
}

func TestBuildSessions_TotalsAreExactSums(t *testing.T) {
	events := []model.UsageEvent{
		eventAt(t, "2025-06-01T10:05:00Z"),
		eventAt(t, "2025-06-01T10:40:00Z"),
	}
	events[0].TotalTokens = 150
	events[0].Cost = 0.5
	events[1].TotalTokens = 250
	events[1].Cost = 1.25

	sessions := BuildSessions(events)
	if len(sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(sessions))
	}
	if sessions[0].TotalTokens != 400 {
		t.Errorf("TotalTokens = %d, want 400", sessions[0].TotalTokens)
	}
	if sessions[0].TotalCost != 1.75 {
		t.Errorf("TotalCost = %v, want 1.75", sessions[0].TotalCost)
	}
}

func TestBurnRate(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &model.Session{
		StartTime: start,
		EndTime:   start.Add(SessionWindow),
	}

	if got := BurnRate(nil); got != 0 {
		t.Errorf("nil session burn rate = %d, want 0", got)
	}
	s.Events = []model.UsageEvent{{}}
	if got := BurnRate(s); got != 0 {
		t.Errorf("single-event burn rate = %d, want 0", got)
	}

	s.Events = make([]model.UsageEvent, 600)
	if got := BurnRate(s); got != 2 {
		t.Errorf("burn rate = %d, want 2 (600 events / 300 min)", got)
	}
}

func TestMinutesUntilReset(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s := &model.Session{StartTime: start, EndTime: start.Add(SessionWindow)}

	if got := MinutesUntilReset(s, start.Add(4*time.Hour)); got != 60 {
		t.Errorf("minutes = %d, want 60", got)
	}
	// An expired window reads zero, not negative.
	if got := MinutesUntilReset(s, start.Add(7*time.Hour)); got != 0 {
		t.Errorf("minutes after expiry = %d, want 0", got)
	}
	if got := MinutesUntilReset(nil, start); got != 0 {
		t.Errorf("nil session minutes = %d, want 0", got)
	}
}

func TestCountStartedSince(t *testing.T) {
	sessions := BuildSessions([]model.UsageEvent{
		eventAt(t, "2025-06-01T02:00:00Z"),
		eventAt(t, "2025-06-01T09:00:00Z"),
		eventAt(t, "2025-06-01T14:30:00Z"),
	})

	midnight := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if got := CountStartedSince(sessions, midnight); got != 2 {
		t.Errorf("started since = %d, want 2", got)
	}
}
