package pipeline

import (
	"sort"
	"time"

	"ccmeter/internal/config"
	"ccmeter/internal/model"
)

// bucket carries the running totals shared by all three report periods.
type bucket struct {
	events      int
	totalTokens int64
	totalCost   float64

	tokensByModel map[string]int64
	costByModel   map[string]float64

	input, output, cacheWrite, cacheRead int64

	cacheCost   float64
	noCacheCost float64

	days map[string]struct{} // unique local dates with activity
}

func newBucket() *bucket {
	return &bucket{
		tokensByModel: make(map[string]int64),
		costByModel:   make(map[string]float64),
		days:          make(map[string]struct{}),
	}
}

// fold adds one priced event to the bucket. Cache figures accumulate
// only for events with a computed breakdown: a supplied cost carries no
// cache information and must not be treated as zero-cache.
func (b *bucket) fold(ev model.UsageEvent, pricing *config.Pricing) {
	b.events++
	b.totalTokens += ev.TotalTokens
	b.totalCost += ev.Cost

	b.input += ev.InputTokens
	b.output += ev.OutputTokens
	b.cacheWrite += ev.CacheWriteTokens
	b.cacheRead += ev.CacheReadTokens

	b.tokensByModel[ev.Model] += ev.TotalTokens
	b.costByModel[ev.Model] += ev.Cost

	if ev.Source == model.CostComputed {
		b.cacheCost += ev.Breakdown.CacheWrite + ev.Breakdown.CacheRead
		b.noCacheCost += pricing.NoCachePrice(ev.Model, ev.InputTokens, ev.OutputTokens, ev.CacheWriteTokens, ev.CacheReadTokens)
	}

	b.days[ev.Timestamp.Local().Format("2006-01-02")] = struct{}{}
}

// AggregateDaily buckets events by local calendar date, ascending.
func AggregateDaily(events []model.UsageEvent, pricing *config.Pricing) []model.DailyStats {
	buckets := make(map[string]*bucket)
	for _, ev := range events {
		key := ev.Timestamp.Local().Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = newBucket()
			buckets[key] = b
		}
		b.fold(ev, pricing)
	}

	days := make([]model.DailyStats, 0, len(buckets))
	for key, b := range buckets {
		date, _ := time.ParseInLocation("2006-01-02", key, time.Local)
		days = append(days, model.DailyStats{
			Date:             date,
			Events:           b.events,
			TotalTokens:      b.totalTokens,
			TotalCost:        b.totalCost,
			TokensByModel:    b.tokensByModel,
			CostByModel:      b.costByModel,
			InputTokens:      b.input,
			OutputTokens:     b.output,
			CacheWriteTokens: b.cacheWrite,
			CacheReadTokens:  b.cacheRead,
			CacheCost:        b.cacheCost,
			NoCacheCost:      b.noCacheCost,
			// Computed once per bucket, after all events are folded.
			CacheSavings: b.noCacheCost - b.totalCost,
		})
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// AggregateWeekly buckets events by Sunday-anchored local week, ascending.
func AggregateWeekly(events []model.UsageEvent, pricing *config.Pricing) []model.WeeklyStats {
	buckets := make(map[time.Time]*bucket)
	for _, ev := range events {
		key := weekStart(ev.Timestamp.Local())
		b, ok := buckets[key]
		if !ok {
			b = newBucket()
			buckets[key] = b
		}
		b.fold(ev, pricing)
	}

	weeks := make([]model.WeeklyStats, 0, len(buckets))
	for start, b := range buckets {
		days := len(b.days)
		weeks = append(weeks, model.WeeklyStats{
			WeekStart:        start,
			WeekEnd:          start.AddDate(0, 0, 6),
			Days:             days,
			Events:           b.events,
			TotalTokens:      b.totalTokens,
			TotalCost:        b.totalCost,
			DailyAverage:     b.totalCost / float64(max(1, days)),
			TokensByModel:    b.tokensByModel,
			CostByModel:      b.costByModel,
			InputTokens:      b.input,
			OutputTokens:     b.output,
			CacheWriteTokens: b.cacheWrite,
			CacheReadTokens:  b.cacheRead,
			CacheCost:        b.cacheCost,
			NoCacheCost:      b.noCacheCost,
			CacheSavings:     b.noCacheCost - b.totalCost,
		})
	}

	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekStart.Before(weeks[j].WeekStart)
	})
	return weeks
}

// AggregateMonthly buckets events by local calendar month, ascending,
// and compares each month's metered cost to the plan price. Savings may
// be negative when the plan costs more; that is reported as-is.
func AggregateMonthly(events []model.UsageEvent, pricing *config.Pricing, plan model.Plan) []model.MonthlyStats {
	type monthKey struct {
		year  int
		month time.Month
	}

	buckets := make(map[monthKey]*bucket)
	for _, ev := range events {
		local := ev.Timestamp.Local()
		key := monthKey{local.Year(), local.Month()}
		b, ok := buckets[key]
		if !ok {
			b = newBucket()
			buckets[key] = b
		}
		b.fold(ev, pricing)
	}

	months := make([]model.MonthlyStats, 0, len(buckets))
	for key, b := range buckets {
		days := len(b.days)
		weeks := (days + 6) / 7
		apiEquivalent := b.totalCost
		months = append(months, model.MonthlyStats{
			Year:              key.year,
			Month:             key.month,
			Days:              days,
			Events:            b.events,
			TotalTokens:       b.totalTokens,
			TotalCost:         b.totalCost,
			DailyAverage:      b.totalCost / float64(max(1, days)),
			WeeklyAverage:     b.totalCost / float64(max(1, weeks)),
			TokensByModel:     b.tokensByModel,
			CostByModel:       b.costByModel,
			InputTokens:       b.input,
			OutputTokens:      b.output,
			CacheWriteTokens:  b.cacheWrite,
			CacheReadTokens:   b.cacheRead,
			CacheCost:         b.cacheCost,
			NoCacheCost:       b.noCacheCost,
			CacheSavings:      b.noCacheCost - b.totalCost,
			PlanCost:          plan.MonthlyCost,
			APIEquivalentCost: apiEquivalent,
			Savings:           apiEquivalent - plan.MonthlyCost,
		})
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})
	return months
}

// weekStart returns local midnight of the Sunday on or before t.
func weekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}
