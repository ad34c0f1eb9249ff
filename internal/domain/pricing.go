package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var perMillion = decimal.NewFromInt(1_000_000)

// ModelPricing holds USD prices per million tokens for a model family.
type ModelPricing struct {
	ID                          string // e.g., "claude-sonnet-4-5"
	DisplayName                 string
	InputPerMillion             float64
	OutputPerMillion            float64
	CacheReadPerMillion         *float64
	CacheWritePerMillion        *float64
	LongContextInputPerMillion  *float64 // Premium pricing for >threshold input tokens
	LongContextOutputPerMillion *float64
	LongContextThreshold        *int64 // Input token threshold (default 200K)
}

// Cost prices one message's usage.
func (p ModelPricing) Cost(u Usage) decimal.Decimal {
	// Cache operations count toward the long context threshold
	totalInputTokens := u.InputTokens + u.CacheReadTokens + u.CacheWriteTokens

	useLongContext := p.LongContextThreshold != nil &&
		p.LongContextInputPerMillion != nil &&
		p.LongContextOutputPerMillion != nil &&
		totalInputTokens > *p.LongContextThreshold

	inputRate := decimal.NewFromFloat(p.InputPerMillion)
	outputRate := decimal.NewFromFloat(p.OutputPerMillion)
	if useLongContext {
		inputRate = decimal.NewFromFloat(*p.LongContextInputPerMillion)
		outputRate = decimal.NewFromFloat(*p.LongContextOutputPerMillion)
	}

	cost := tokenCost(u.InputTokens, inputRate).Add(tokenCost(u.OutputTokens, outputRate))

	if p.CacheReadPerMillion != nil {
		cacheReadRate := decimal.NewFromFloat(*p.CacheReadPerMillion)
		if useLongContext {
			// 0.1x the long context input price
			cacheReadRate = inputRate.Mul(decimal.New(1, -1))
		}
		cost = cost.Add(tokenCost(u.CacheReadTokens, cacheReadRate))
	}
	if p.CacheWritePerMillion != nil {
		cacheWriteRate := decimal.NewFromFloat(*p.CacheWritePerMillion)
		if useLongContext {
			// 1.25x the long context input price (5-min cache)
			cacheWriteRate = inputRate.Mul(decimal.New(125, -2))
		}
		cost = cost.Add(tokenCost(u.CacheWriteTokens, cacheWriteRate))
	}

	return cost
}

func tokenCost(tokens int64, ratePerMillion decimal.Decimal) decimal.Decimal {
	if tokens <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(tokens).Mul(ratePerMillion).Div(perMillion)
}

func ptr[T any](v T) *T { return &v }

var longContextThreshold = ptr(int64(200_000))

var modelPricing = []ModelPricing{
	// Current models
	{ID: "claude-opus-4-6", DisplayName: "Claude Opus 4.6", InputPerMillion: 5.00, OutputPerMillion: 25.00,
		CacheReadPerMillion: ptr(0.50), CacheWritePerMillion: ptr(6.25),
		LongContextInputPerMillion: ptr(10.00), LongContextOutputPerMillion: ptr(37.50), LongContextThreshold: longContextThreshold},
	{ID: "claude-opus-4-5", DisplayName: "Claude Opus 4.5", InputPerMillion: 5.00, OutputPerMillion: 25.00,
		CacheReadPerMillion: ptr(0.50), CacheWritePerMillion: ptr(6.25)},
	{ID: "claude-sonnet-4-5", DisplayName: "Claude Sonnet 4.5", InputPerMillion: 3.00, OutputPerMillion: 15.00,
		CacheReadPerMillion: ptr(0.30), CacheWritePerMillion: ptr(3.75),
		LongContextInputPerMillion: ptr(6.00), LongContextOutputPerMillion: ptr(22.50), LongContextThreshold: longContextThreshold},
	{ID: "claude-haiku-4-5", DisplayName: "Claude Haiku 4.5", InputPerMillion: 1.00, OutputPerMillion: 5.00,
		CacheReadPerMillion: ptr(0.10), CacheWritePerMillion: ptr(1.25)},
	// Legacy models
	{ID: "claude-opus-4-1", DisplayName: "Claude Opus 4.1", InputPerMillion: 15.00, OutputPerMillion: 75.00,
		CacheReadPerMillion: ptr(1.50), CacheWritePerMillion: ptr(18.75)},
	{ID: "claude-opus-4", DisplayName: "Claude Opus 4", InputPerMillion: 15.00, OutputPerMillion: 75.00,
		CacheReadPerMillion: ptr(1.50), CacheWritePerMillion: ptr(18.75)},
	{ID: "claude-sonnet-4", DisplayName: "Claude Sonnet 4", InputPerMillion: 3.00, OutputPerMillion: 15.00,
		CacheReadPerMillion: ptr(0.30), CacheWritePerMillion: ptr(3.75),
		LongContextInputPerMillion: ptr(6.00), LongContextOutputPerMillion: ptr(22.50), LongContextThreshold: longContextThreshold},
	{ID: "claude-3-7-sonnet", DisplayName: "Claude Sonnet 3.7", InputPerMillion: 3.00, OutputPerMillion: 15.00,
		CacheReadPerMillion: ptr(0.30), CacheWritePerMillion: ptr(3.75)},
	{ID: "claude-3-5-sonnet", DisplayName: "Claude Sonnet 3.5", InputPerMillion: 3.00, OutputPerMillion: 15.00,
		CacheReadPerMillion: ptr(0.30), CacheWritePerMillion: ptr(3.75)},
	{ID: "claude-3-5-haiku", DisplayName: "Claude Haiku 3.5", InputPerMillion: 0.80, OutputPerMillion: 4.00,
		CacheReadPerMillion: ptr(0.08), CacheWritePerMillion: ptr(1.00)},
	{ID: "claude-3-haiku", DisplayName: "Claude Haiku 3", InputPerMillion: 0.25, OutputPerMillion: 1.25,
		CacheReadPerMillion: ptr(0.03), CacheWritePerMillion: ptr(0.30)},
}

// byPrefixLength lists pricing entries longest ID first so that
// "claude-opus-4-1-20250805" matches claude-opus-4-1 before claude-opus-4.
var byPrefixLength = func() []ModelPricing {
	sorted := append([]ModelPricing(nil), modelPricing...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].ID) > len(sorted[j].ID)
	})
	return sorted
}()

// DefaultPricing is used when the model is unknown.
var DefaultPricing = func() ModelPricing {
	for _, p := range modelPricing {
		if p.ID == "claude-sonnet-4-5" {
			return p
		}
	}
	return modelPricing[0]
}()

// PricingFor returns pricing for a model id, with fallback to DefaultPricing.
func PricingFor(model string) ModelPricing {
	model = strings.ToLower(strings.TrimSpace(model))
	if model == "" {
		return DefaultPricing
	}

	for _, p := range byPrefixLength {
		if model == p.ID || strings.HasPrefix(model, p.ID) || strings.Contains(model, p.ID) {
			return p
		}
	}

	return DefaultPricing
}
