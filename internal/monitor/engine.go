// Package monitor exposes the usage-analytics operations consumed by
// the CLI commands: live session stats and daily/weekly/monthly reports.
package monitor

import (
	"fmt"
	"sync"
	"time"

	"ccmeter/internal/config"
	"ccmeter/internal/model"
	"ccmeter/internal/pipeline"
	"ccmeter/internal/source"
	"ccmeter/internal/store"
)

// sessionLookbackHours covers two-plus full 5-hour windows, enough to
// always have a current and a previous session when activity exists.
const sessionLookbackHours = 12

// Engine re-derives every answer from the on-disk logs; the only state
// it holds is the active plan and a short-TTL memo of report queries.
// Plan swaps are last-writer-wins and never rewrite historical reports.
type Engine struct {
	ingester *source.Ingester
	pricing  *config.Pricing
	cache    *store.Cache
	cacheTTL time.Duration

	mu   sync.RWMutex
	plan model.Plan
}

// New returns an Engine over the given ingester. cache may be nil to
// disable report memoization.
func New(ingester *source.Ingester, pricing *config.Pricing, plan model.Plan, cache *store.Cache, cacheTTL time.Duration) *Engine {
	return &Engine{
		ingester: ingester,
		pricing:  pricing,
		cache:    cache,
		cacheTTL: cacheTTL,
		plan:     plan,
	}
}

// Projects lists the known project names.
func (e *Engine) Projects() ([]string, error) {
	return e.ingester.Projects()
}

// SetPlan swaps the active plan. Historical reports are unaffected;
// only alerts and plan comparisons computed from now on see it.
func (e *Engine) SetPlan(p model.Plan) {
	e.mu.Lock()
	e.plan = p
	e.mu.Unlock()
}

// Plan returns the active plan.
func (e *Engine) Plan() model.Plan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.plan
}

// CurrentStats reconstructs the recent session windows and today's
// totals. Never served from cache: the current session must always
// reflect the freshest data on disk.
func (e *Engine) CurrentStats(project string) (model.CurrentStats, error) {
	recent, err := e.ingester.LoadRecent(sessionLookbackHours, project)
	if err != nil {
		return model.CurrentStats{}, fmt.Errorf("loading recent events: %w", err)
	}
	today, err := e.ingester.LoadToday(project)
	if err != nil {
		return model.CurrentStats{}, fmt.Errorf("loading today's events: %w", err)
	}

	now := time.Now()
	sessions := pipeline.BuildSessions(recent)

	stats := model.CurrentStats{
		TodayMessages: len(today),
		Plan:          e.Plan(),
	}
	for _, ev := range today {
		stats.TodayCost += ev.Cost
		stats.TodayTokens += ev.TotalTokens
	}

	if len(sessions) > 0 {
		stats.CurrentSession = &sessions[0]
	}
	if len(sessions) > 1 {
		stats.PreviousSession = &sessions[1]
	}

	stats.BurnRate = pipeline.BurnRate(stats.CurrentSession)
	stats.MinutesUntilReset = pipeline.MinutesUntilReset(stats.CurrentSession, now)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats.SessionsStartedToday = pipeline.CountStartedSince(sessions, midnight)

	stats.Alerts = ComputeAlerts(stats.TodayCost, stats.Plan, now)

	return stats, nil
}

// RecentSessions reconstructs the billing windows covering the session
// lookback, most recent first. Like CurrentStats this always reads disk.
func (e *Engine) RecentSessions(project string) ([]model.Session, error) {
	recent, err := e.ingester.LoadRecent(sessionLookbackHours, project)
	if err != nil {
		return nil, fmt.Errorf("loading recent events: %w", err)
	}
	return pipeline.BuildSessions(recent), nil
}

// DailyReport returns per-day aggregates for the last `days` days,
// oldest first. Results are memoized briefly so rapid identical queries
// skip the log rescan.
func (e *Engine) DailyReport(days int, project string) ([]model.DailyStats, error) {
	if days <= 0 {
		days = 7
	}
	key := fmt.Sprintf("daily:%d:%s", days, project)
	if cached, ok := e.cached(key); ok {
		return cached.([]model.DailyStats), nil
	}

	events, err := e.ingester.LoadRecent(days*24, project)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	report := pipeline.AggregateDaily(events, e.pricing)

	e.memoize(key, report)
	return report, nil
}

// WeeklyReport returns Sunday-anchored weekly aggregates over the full
// history, trimmed to the most recent `weeks` weeks, oldest first.
func (e *Engine) WeeklyReport(weeks int, project string) ([]model.WeeklyStats, error) {
	if weeks <= 0 {
		weeks = 4
	}
	key := fmt.Sprintf("weekly:%d:%s", weeks, project)
	if cached, ok := e.cached(key); ok {
		return cached.([]model.WeeklyStats), nil
	}

	events, err := e.ingester.LoadAll(project)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	report := pipeline.AggregateWeekly(events, e.pricing)
	if len(report) > weeks {
		report = report[len(report)-weeks:]
	}

	e.memoize(key, report)
	return report, nil
}

// MonthlyReport returns calendar-month aggregates over the full
// history, trimmed to the most recent `months` months, oldest first.
func (e *Engine) MonthlyReport(months int, project string) ([]model.MonthlyStats, error) {
	if months <= 0 {
		months = 3
	}
	key := fmt.Sprintf("monthly:%d:%s", months, project)
	if cached, ok := e.cached(key); ok {
		return cached.([]model.MonthlyStats), nil
	}

	events, err := e.ingester.LoadAll(project)
	if err != nil {
		return nil, fmt.Errorf("loading events: %w", err)
	}
	report := pipeline.AggregateMonthly(events, e.pricing, e.Plan())
	if len(report) > months {
		report = report[len(report)-months:]
	}

	e.memoize(key, report)
	return report, nil
}

func (e *Engine) cached(key string) (any, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(key)
}

func (e *Engine) memoize(key string, value any) {
	if e.cache != nil {
		e.cache.Set(key, value, e.cacheTTL)
	}
}
