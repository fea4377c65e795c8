package config

import (
	"sort"
	"strings"
	"sync"

	"ccmeter/internal/model"
)

// PricingTier holds per-million-token rates for models whose identifier
// contains Pattern.
type PricingTier struct {
	Pattern           string
	InputPerMTok      float64
	OutputPerMTok     float64
	CacheWritePerMTok float64
	CacheReadPerMTok  float64
}

// DefaultTiers is the built-in rate table. Full dated identifiers come
// first; the short family patterns act as fallbacks for newer date
// suffixes of the same family.
var DefaultTiers = []PricingTier{
	{Pattern: "claude-sonnet-4-20250514", InputPerMTok: 3, OutputPerMTok: 15, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.3},
	{Pattern: "claude-3-5-sonnet-20241022", InputPerMTok: 3, OutputPerMTok: 15, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.3},
	{Pattern: "claude-3-5-haiku-20241022", InputPerMTok: 0.8, OutputPerMTok: 4, CacheWritePerMTok: 1, CacheReadPerMTok: 0.08},
	{Pattern: "claude-3-opus-20240229", InputPerMTok: 15, OutputPerMTok: 75, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.5},
	{Pattern: "claude-opus-4-20250514", InputPerMTok: 15, OutputPerMTok: 75, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.5},
	{Pattern: "claude-sonnet-4", InputPerMTok: 3, OutputPerMTok: 15, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.3},
	{Pattern: "claude-3-5-sonnet", InputPerMTok: 3, OutputPerMTok: 15, CacheWritePerMTok: 3.75, CacheReadPerMTok: 0.3},
	{Pattern: "claude-3-5-haiku", InputPerMTok: 0.8, OutputPerMTok: 4, CacheWritePerMTok: 1, CacheReadPerMTok: 0.08},
	{Pattern: "claude-3-opus", InputPerMTok: 15, OutputPerMTok: 75, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.5},
	{Pattern: "claude-opus-4", InputPerMTok: 15, OutputPerMTok: 75, CacheWritePerMTok: 18.75, CacheReadPerMTok: 1.5},
}

// Pricing resolves model identifiers to rate tiers and prices token
// counts. Tier selection is longest-pattern-wins over substring
// containment, so ordering of the input slice does not matter.
// Resolutions are memoized per model identifier.
type Pricing struct {
	tiers []PricingTier // sorted by pattern length descending

	mu       sync.RWMutex
	resolved map[string]int // model identifier -> index into tiers, -1 for no match
}

// NewPricing builds a Pricing from the given tiers. Exact-pattern
// lookups are seeded into the resolution map up front.
func NewPricing(tiers []PricingTier) *Pricing {
	sorted := make([]PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Pattern) > len(sorted[j].Pattern)
	})

	p := &Pricing{
		tiers:    sorted,
		resolved: make(map[string]int, len(sorted)),
	}
	for i, t := range sorted {
		if _, ok := p.resolved[t.Pattern]; !ok {
			p.resolved[t.Pattern] = i
		}
	}
	return p
}

// DefaultPricing returns a Pricing over the built-in table.
func DefaultPricing() *Pricing {
	return NewPricing(DefaultTiers)
}

// Lookup returns the tier for a model identifier. The second return is
// false when no tier's pattern is contained in the identifier.
func (p *Pricing) Lookup(modelID string) (PricingTier, bool) {
	p.mu.RLock()
	idx, ok := p.resolved[modelID]
	p.mu.RUnlock()

	if !ok {
		idx = -1
		for i, t := range p.tiers {
			if strings.Contains(modelID, t.Pattern) {
				idx = i
				break
			}
		}
		p.mu.Lock()
		p.resolved[modelID] = idx
		p.mu.Unlock()
	}

	if idx < 0 {
		return PricingTier{}, false
	}
	return p.tiers[idx], true
}

// Price computes the cost of one event's token counts. The breakdown's
// four parts sum to the returned cost. ok is false when no tier matches,
// in which case the cost is zero: a pricing gap must not block reporting.
func (p *Pricing) Price(modelID string, input, output, cacheWrite, cacheRead int64) (float64, model.CostBreakdown, bool) {
	tier, ok := p.Lookup(modelID)
	if !ok {
		return 0, model.CostBreakdown{}, false
	}

	bd := model.CostBreakdown{
		Input:      float64(input) / 1_000_000 * tier.InputPerMTok,
		Output:     float64(output) / 1_000_000 * tier.OutputPerMTok,
		CacheWrite: float64(cacheWrite) / 1_000_000 * tier.CacheWritePerMTok,
		CacheRead:  float64(cacheRead) / 1_000_000 * tier.CacheReadPerMTok,
	}
	return bd.Input + bd.Output + bd.CacheWrite + bd.CacheRead, bd, true
}

// NoCachePrice computes the counterfactual cost had every cache-write
// and cache-read token been billed at the plain input rate. Used only
// for savings reporting, never for the authoritative cost.
func (p *Pricing) NoCachePrice(modelID string, input, output, cacheWrite, cacheRead int64) float64 {
	tier, ok := p.Lookup(modelID)
	if !ok {
		return 0
	}
	inputAll := input + cacheWrite + cacheRead
	return float64(inputAll)/1_000_000*tier.InputPerMTok +
		float64(output)/1_000_000*tier.OutputPerMTok
}
