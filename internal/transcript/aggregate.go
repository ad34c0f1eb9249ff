package transcript

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// syntheticModel marks messages Claude Code writes itself (API errors, interrupts).
const syntheticModel = "<synthetic>"

// Aggregator accumulates metrics over records in file order.
//
// Tokens only accumulate for records flagged active. Cost and line counters
// accumulate for every record: compaction resets the context window, never
// what the session spent or edited.
type Aggregator struct {
	extractor Extractor

	tokens  domain.TokenMetrics
	session domain.SessionMetrics

	priced  map[string]pricedUsage
	counted map[string]domain.Usage

	firstSessionID  string
	activeSessionID string
	activeModel     string
	lastModel       string
}

// NewAggregator creates an Aggregator using the given extractor.
func NewAggregator(extractor Extractor) *Aggregator {
	return &Aggregator{
		extractor:  extractor,
		session:    domain.SessionMetrics{CostUSD: decimal.Zero},
		priced:     make(map[string]pricedUsage),
		counted:    make(map[string]domain.Usage),
	}
}

// Add folds one record into the running totals.
func (a *Aggregator) Add(rec domain.Record, active bool) {
	if rec.Kind == domain.KindMalformed {
		a.session.Malformed++
		return
	}

	a.trackTime(rec.Timestamp)
	a.trackIdentity(rec, active)

	if rec.Kind.IsMessage() {
		a.session.Messages++
	}
	a.addCost(rec)
	for _, block := range rec.Content {
		added, removed := countLineChanges(block)
		a.session.LinesAdded += added
		a.session.LinesRemoved += removed
	}

	if active {
		a.addTokens(rec)
	}
}

func (a *Aggregator) trackTime(ts *time.Time) {
	if ts == nil {
		return
	}
	if a.session.StartedAt == nil {
		t := *ts
		a.session.StartedAt = &t
	}
	t := *ts
	a.session.LastActivity = &t
}

func (a *Aggregator) trackIdentity(rec domain.Record, active bool) {
	if rec.SessionID != "" {
		if a.firstSessionID == "" {
			a.firstSessionID = rec.SessionID
		}
		if active {
			a.activeSessionID = rec.SessionID
		}
	}

	if rec.Kind != domain.KindAssistant || rec.Model == "" || rec.Model == syntheticModel {
		return
	}
	a.lastModel = rec.Model
	if active && Contributes(rec) {
		a.activeModel = rec.Model
	}
}

type pricedUsage struct {
	usage domain.Usage
	cost  decimal.Decimal
}

// addCost prices usage once per API message. Claude Code repeats the message
// id on every line of a multi-block response and may stream partial usage
// before the final figures, so each id contributes its field-wise maximum.
func (a *Aggregator) addCost(rec domain.Record) {
	if rec.Usage == nil {
		return
	}
	model := rec.Model
	if model == "" || model == syntheticModel {
		model = a.lastModel
	}
	pricing := domain.PricingFor(model)

	if rec.MessageID == "" {
		a.session.CostUSD = a.session.CostUSD.Add(pricing.Cost(*rec.Usage))
		return
	}

	prev, seen := a.priced[rec.MessageID]
	merged := rec.Usage.Max(prev.usage)
	cost := pricing.Cost(merged)
	if seen && !cost.GreaterThan(prev.cost) {
		a.priced[rec.MessageID] = pricedUsage{usage: merged, cost: prev.cost}
		return
	}
	a.session.CostUSD = a.session.CostUSD.Add(cost.Sub(prev.cost))
	a.priced[rec.MessageID] = pricedUsage{usage: merged, cost: cost}
}

func (a *Aggregator) addTokens(rec domain.Record) {
	ex := a.extractor.Extract(rec)
	if ex.Estimated {
		a.tokens.ActiveTokens = domain.AddTokens(a.tokens.ActiveTokens, ex.Tokens)
		a.tokens.Estimated = true
		a.tokens.EstimatedTokens = domain.AddTokens(a.tokens.EstimatedTokens, ex.Tokens)
		return
	}
	if ex.Usage == nil {
		return
	}

	var prev domain.Usage
	next := *ex.Usage
	if rec.MessageID != "" {
		prev = a.counted[rec.MessageID]
		next = next.Max(prev)
		a.counted[rec.MessageID] = next
	}
	a.tokens.ActiveTokens = domain.AddTokens(a.tokens.ActiveTokens, next.ConversationTokens()-prev.ConversationTokens())
	a.tokens.InputTokens = domain.AddTokens(a.tokens.InputTokens, next.InputTokens-prev.InputTokens)
	a.tokens.OutputTokens = domain.AddTokens(a.tokens.OutputTokens, next.OutputTokens-prev.OutputTokens)
}

// sessionID picks the session identity. After a compaction Claude Code may
// fork the session id, so the newest id in the active window wins over the
// externally supplied one.
func (a *Aggregator) sessionID(external string, compacted bool) string {
	if compacted && a.activeSessionID != "" {
		return a.activeSessionID
	}
	if external != "" {
		return external
	}
	return a.firstSessionID
}

func (a *Aggregator) model(external string) string {
	if a.activeModel != "" {
		return a.activeModel
	}
	return external
}

// Finish returns the accumulated metrics. sessionID and model are the
// externally supplied identity, boundaries the number of recognized
// compactions in the file.
func (a *Aggregator) Finish(sessionID, model string, boundaries int) (domain.TokenMetrics, domain.SessionMetrics) {
	tokens := a.tokens
	tokens.SessionID = a.sessionID(sessionID, boundaries > 0)
	tokens.Model = a.model(model)
	tokens.Boundaries = boundaries

	session := a.session
	if session.StartedAt != nil && session.LastActivity != nil {
		if d := session.LastActivity.Sub(*session.StartedAt); d > 0 {
			session.Elapsed = d
		}
	}
	return tokens, session
}
