package transcript

import (
	"context"
	"errors"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/ports"
)

// Stage is a step of one parse.
type Stage int

const (
	StageStart Stage = iota
	StageReading
	StageClassifying
	StageBoundaryResolved
	StageAggregating
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageStart:
		return "start"
	case StageReading:
		return "reading"
	case StageClassifying:
		return "classifying"
	case StageBoundaryResolved:
		return "boundary_resolved"
	case StageAggregating:
		return "aggregating"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Request identifies the transcript to parse. SessionID, Model and
// ContextLimit are the values Claude Code supplied on stdin and may be empty.
// A positive ContextLimit replaces the model lookup.
type Request struct {
	Path         string
	SessionID    string
	Model        string
	ContextLimit int64
}

// Options configures a Parser.
type Options struct {
	CharsPerToken  float64
	SystemOverhead int64
	Resolver       ports.ModelLimitsResolver
	Logger         domain.Logger
}

// Parser reduces a transcript to a domain.Snapshot. It holds no state
// between calls and is safe for concurrent use.
type Parser struct {
	extractor      Extractor
	systemOverhead int64
	resolver       ports.ModelLimitsResolver
	logger         domain.Logger
}

// NewParser creates a Parser. A nil Resolver leaves every limit unknown.
func NewParser(opts Options) *Parser {
	return &Parser{
		extractor:      NewExtractor(opts.CharsPerToken),
		systemOverhead: opts.SystemOverhead,
		resolver:       opts.Resolver,
		logger:         opts.Logger,
	}
}

// Parse reads the transcript once and returns its snapshot. A missing or
// unreadable transcript is reported through Snapshot.State; only context
// cancellation is returned as an error.
func (p *Parser) Parse(ctx context.Context, req Request) (domain.Snapshot, error) {
	snap := domain.Snapshot{
		State:          domain.StateOK,
		TranscriptPath: req.Path,
		Tokens: domain.TokenMetrics{
			SessionID:      req.SessionID,
			Model:          req.Model,
			SystemOverhead: p.systemOverhead,
		},
	}
	if snap.Tokens.SessionID == "" {
		snap.Tokens.SessionID = SessionIDFromPath(req.Path)
	}

	p.enter(StageReading, "path", req.Path)
	records, err := p.read(ctx, req.Path)
	if err != nil {
		return p.fail(ctx, snap, err)
	}
	p.enter(StageClassifying, "records", len(records))

	last := LastBoundary(records)
	boundaries := CountBoundaries(records)
	for _, w := range SuspectedResets(records) {
		p.warn("suspected context reset", "detail", w, "path", req.Path)
		snap.Warnings = append(snap.Warnings, w)
	}
	p.enter(StageBoundaryResolved, "boundary_index", last, "boundaries", boundaries)

	agg := NewAggregator(p.extractor)
	for i, rec := range records {
		agg.Add(rec, i > last)
	}
	p.enter(StageAggregating, "active_records", len(records)-last-1)

	tokens, session := agg.Finish(snap.Tokens.SessionID, req.Model, boundaries)
	tokens.SystemOverhead = p.systemOverhead

	limit := req.ContextLimit
	if limit <= 0 {
		if limit, err = p.resolveLimit(ctx, tokens.Model); err != nil {
			return snap, err
		}
	}
	tokens.ContextLimit = limit

	snap.Tokens = tokens
	snap.Session = session
	if session.Malformed > 0 {
		p.debug("skipped malformed lines", "count", session.Malformed)
	}
	p.enter(StageDone,
		"active_tokens", tokens.ActiveTokens,
		"estimated", tokens.Estimated,
		"context_limit", tokens.ContextLimit,
	)
	return snap, nil
}

func (p *Parser) read(ctx context.Context, path string) ([]domain.Record, error) {
	var records []domain.Record
	err := ReadLines(ctx, path, func(lineNo int, line []byte) error {
		rec := Classify(line)
		rec.Line = lineNo
		records = append(records, rec)
		return nil
	})
	return records, err
}

func (p *Parser) fail(ctx context.Context, snap domain.Snapshot, err error) (domain.Snapshot, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return snap, ctxErr
	}

	var ioErr *domain.IOError
	switch {
	case errors.Is(err, domain.ErrNoTranscript):
		snap.State = domain.StateNoTranscript
		p.enter(StageFailed, "reason", snap.State.String())
	case errors.As(err, &ioErr):
		snap.State = domain.StateIOError
		p.enter(StageFailed, "reason", snap.State.String())
		p.logError("failed to read transcript", "path", ioErr.Path, "error", ioErr.Err)
	default:
		snap.State = domain.StateIOError
		p.enter(StageFailed, "reason", snap.State.String())
		p.logError("failed to read transcript", "path", snap.TranscriptPath, "error", err)
	}
	return snap, nil
}

func (p *Parser) resolveLimit(ctx context.Context, model string) (int64, error) {
	if p.resolver == nil || model == "" {
		return 0, nil
	}
	limit, err := p.resolver.Resolve(ctx, model)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		p.debug("context limit unknown", "model", model, "error", err)
		return 0, nil
	}
	if limit < 0 {
		return 0, nil
	}
	return limit, nil
}

func (p *Parser) enter(stage Stage, args ...any) {
	p.debug("parse stage", append([]any{"stage", stage.String()}, args...)...)
}

func (p *Parser) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func (p *Parser) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Parser) logError(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
