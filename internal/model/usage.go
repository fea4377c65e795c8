// Package model defines domain types for ccmeter usage events, sessions, and reports.
package model

import "time"

// CostSource tells how an event's cost was determined.
type CostSource int

const (
	// CostComputed means the cost was calculated from the pricing table
	// and Breakdown is populated.
	CostComputed CostSource = iota
	// CostSupplied means the log line carried an explicit costUSD value,
	// used verbatim. There is no breakdown.
	CostSupplied
	// CostUnpriced means no pricing tier matched the model; cost is zero.
	CostUnpriced
)

// CostBreakdown splits a computed cost by token class. The four parts
// sum to the event's Cost.
type CostBreakdown struct {
	Input      float64
	Output     float64
	CacheWrite float64
	CacheRead  float64
}

// UsageEvent is one priced request/response exchange parsed from a log
// line. Immutable once created by the ingester.
type UsageEvent struct {
	Timestamp time.Time
	Model     string
	Project   string

	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64
	TotalTokens      int64 // sum of the four counts above

	Cost      float64
	Source    CostSource
	Breakdown CostBreakdown // valid only when Source == CostComputed
}

// Session is one 5-hour billing window reconstructed from the event
// stream. Events are sorted ascending and every timestamp lies in
// [StartTime, EndTime).
type Session struct {
	ID        string // window start in RFC 3339
	StartTime time.Time
	EndTime   time.Time
	Events    []UsageEvent

	TotalTokens int64
	TotalCost   float64
}

// Plan is a named subscription tier with per-session allowances.
type Plan struct {
	Name               string
	MessagesPerSession int
	PromptsPerSession  int
	SessionDuration    time.Duration
	MonthlyCost        float64
	SessionLimit       int
	TokensPerSession   int64
}

// Alert levels.
const (
	AlertInfo     = "info"
	AlertWarning  = "warning"
	AlertCritical = "critical"
)

// Alert is a usage warning computed against the active plan.
type Alert struct {
	Level     string
	Message   string
	Timestamp time.Time
}
