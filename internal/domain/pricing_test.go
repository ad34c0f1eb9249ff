package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestModelPricing_Cost_StandardPricing(t *testing.T) {
	pricing := &ModelPricing{
		ID:               "claude-sonnet-4",
		DisplayName:      "Claude Sonnet 4",
		InputPerMillion:  3.00,
		OutputPerMillion: 15.00,
	}

	// 1000 input, 500 output = $0.003 + $0.0075 = $0.0105
	cost := pricing.Cost(Usage{InputTokens: 1000, OutputTokens: 500})
	assertDecimal(t, "0.0105", cost)
}

func TestModelPricing_Cost_WithCache(t *testing.T) {
	pricing := &ModelPricing{
		ID:                   "claude-sonnet-4",
		InputPerMillion:      3.00,
		OutputPerMillion:     15.00,
		CacheReadPerMillion:  ptr(0.30),
		CacheWritePerMillion: ptr(3.75),
	}

	// $0.003 + $0.0075 + $0.00003 + $0.0001875 = $0.0107175
	cost := pricing.Cost(Usage{InputTokens: 1000, OutputTokens: 500, CacheReadTokens: 100, CacheWriteTokens: 50})
	assertDecimal(t, "0.0107175", cost)
}

func TestModelPricing_Cost_LongContext(t *testing.T) {
	pricing := &ModelPricing{
		ID:                          "claude-sonnet-4",
		InputPerMillion:             3.00,
		OutputPerMillion:            15.00,
		CacheReadPerMillion:         ptr(0.30),
		CacheWritePerMillion:        ptr(3.75),
		LongContextInputPerMillion:  ptr(6.00),
		LongContextOutputPerMillion: ptr(22.50),
		LongContextThreshold:        ptr(int64(200000)),
	}

	tests := []struct {
		name  string
		usage Usage
		want  string
	}{
		// 100000 input, 10000 output = $0.30 + $0.15
		{"under threshold", Usage{InputTokens: 100000, OutputTokens: 10000}, "0.45"},
		// 250000 input, 10000 output = $1.50 + $0.225
		{"over threshold", Usage{InputTokens: 250000, OutputTokens: 10000}, "1.725"},
		// 150K input + 30K cache read + 25K cache write = 205K > 200K
		// $0.90 + $0.225 + $0.018 + $0.1875
		{"cache counts toward threshold", Usage{InputTokens: 150000, OutputTokens: 10000, CacheReadTokens: 30000, CacheWriteTokens: 25000}, "1.3305"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, pricing.Cost(tt.usage))
		})
	}
}

func TestModelPricing_Cost_ZeroUsage(t *testing.T) {
	p := PricingFor("claude-opus-4-5")
	if !p.Cost(Usage{}).IsZero() {
		t.Errorf("expected zero cost for empty usage")
	}
}

func TestPricingFor(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"claude-opus-4-1-20250805", "claude-opus-4-1"},
		{"claude-opus-4-20250514", "claude-opus-4"},
		{"claude-opus-4-6", "claude-opus-4-6"},
		{"claude-sonnet-4-5-20250929", "claude-sonnet-4-5"},
		{"claude-sonnet-4-20250514", "claude-sonnet-4"},
		{"Claude-Haiku-4-5", "claude-haiku-4-5"},
		{"claude-3-5-haiku-20241022", "claude-3-5-haiku"},
		{"", DefaultPricing.ID},
		{"gpt-4o", DefaultPricing.ID},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assertEqual(t, "PricingFor", tt.want, PricingFor(tt.model).ID)
		})
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected cost %s, got %s", want, got.String())
	}
}
