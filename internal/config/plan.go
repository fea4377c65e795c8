package config

import (
	"time"

	"ccmeter/internal/model"
)

// SessionDuration is the length of one billing window.
const SessionDuration = 5 * time.Hour

// DefaultPlans maps plan names to their allowances. Session allowances
// reset every SessionDuration; the Free plan carries no session allowance.
var DefaultPlans = map[string]model.Plan{
	"Free": {
		Name:               "Free",
		MessagesPerSession: 0,
		PromptsPerSession:  0,
		SessionDuration:    24 * time.Hour,
		MonthlyCost:        0,
		SessionLimit:       0,
		TokensPerSession:   0,
	},
	"Pro": {
		Name:               "Pro",
		MessagesPerSession: 45,
		PromptsPerSession:  25,
		SessionDuration:    SessionDuration,
		MonthlyCost:        20,
		SessionLimit:       999,
		TokensPerSession:   4_500_000,
	},
	"Max5": {
		Name:               "Max5",
		MessagesPerSession: 225,
		PromptsPerSession:  125,
		SessionDuration:    SessionDuration,
		MonthlyCost:        100,
		SessionLimit:       50,
		TokensPerSession:   22_500_000,
	},
	"Max20": {
		Name:               "Max20",
		MessagesPerSession: 900,
		PromptsPerSession:  500,
		SessionDuration:    SessionDuration,
		MonthlyCost:        200,
		SessionLimit:       50,
		TokensPerSession:   90_000_000,
	},
	"Team": {
		Name:               "Team",
		MessagesPerSession: 45,
		PromptsPerSession:  25,
		SessionDuration:    SessionDuration,
		MonthlyCost:        25,
		SessionLimit:       999,
		TokensPerSession:   4_500_000,
	},
}

// PlanByName looks up a plan, falling back to Pro for unknown names.
func PlanByName(name string) model.Plan {
	if p, ok := DefaultPlans[name]; ok {
		return p
	}
	return DefaultPlans["Pro"]
}
