package monitor

import (
	"fmt"
	"time"

	"ccmeter/internal/model"
)

// Daily-cost alert thresholds in USD.
const (
	warnDailyCost     = 1.0
	criticalDailyCost = 5.0
)

// ComputeAlerts derives the alert list for one stats query. Pure: the
// same inputs always produce the same alerts, and nothing is stored
// between calls.
func ComputeAlerts(dailyCost float64, plan model.Plan, now time.Time) []model.Alert {
	var alerts []model.Alert

	switch {
	case dailyCost > criticalDailyCost:
		alerts = append(alerts, model.Alert{
			Level:     model.AlertCritical,
			Message:   fmt.Sprintf("High daily cost: $%.2f", dailyCost),
			Timestamp: now,
		})
	case dailyCost > warnDailyCost:
		alerts = append(alerts, model.Alert{
			Level:     model.AlertWarning,
			Message:   fmt.Sprintf("Moderate daily cost: $%.2f", dailyCost),
			Timestamp: now,
		})
	}

	if plan.Name == "Free" {
		alerts = append(alerts, model.Alert{
			Level:     model.AlertInfo,
			Message:   "Free plan has limited usage before rate limiting",
			Timestamp: now,
		})
	}

	return alerts
}
