package model

import "time"

// DailyStats aggregates all events falling on one local calendar date.
type DailyStats struct {
	Date time.Time // local midnight of the bucket day

	Events      int
	TotalTokens int64
	TotalCost   float64

	TokensByModel map[string]int64
	CostByModel   map[string]float64

	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64

	// CacheCost sums the cache-write and cache-read portions of computed
	// cost breakdowns. NoCacheCost is the counterfactual cost had all
	// cache tokens been billed at the plain input rate.
	CacheCost    float64
	NoCacheCost  float64
	CacheSavings float64 // NoCacheCost - TotalCost
}

// WeeklyStats aggregates events over one Sunday-anchored local week.
type WeeklyStats struct {
	WeekStart time.Time // Sunday, local midnight
	WeekEnd   time.Time // following Saturday

	Days         int // unique days with activity
	Events       int
	TotalTokens  int64
	TotalCost    float64
	DailyAverage float64 // TotalCost / max(1, Days)

	TokensByModel map[string]int64
	CostByModel   map[string]float64

	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64

	CacheCost    float64
	NoCacheCost  float64
	CacheSavings float64
}

// MonthlyStats aggregates events over one local calendar month and
// compares metered cost against the active plan's price.
type MonthlyStats struct {
	Year  int
	Month time.Month

	Days          int
	Events        int
	TotalTokens   int64
	TotalCost     float64
	DailyAverage  float64
	WeeklyAverage float64

	TokensByModel map[string]int64
	CostByModel   map[string]float64

	InputTokens      int64
	OutputTokens     int64
	CacheWriteTokens int64
	CacheReadTokens  int64

	CacheCost    float64
	NoCacheCost  float64
	CacheSavings float64

	// Savings may be negative when the plan costs more than the metered
	// equivalent; never clamped.
	PlanCost          float64
	APIEquivalentCost float64
	Savings           float64
}

// CurrentStats is the live dashboard snapshot for the most recent
// session windows plus today's running totals.
type CurrentStats struct {
	CurrentSession  *Session
	PreviousSession *Session

	TodayMessages int
	TodayCost     float64
	TodayTokens   int64

	BurnRate             int // events per minute in the current window
	MinutesUntilReset    int
	SessionsStartedToday int

	Plan   Plan
	Alerts []Alert
}
