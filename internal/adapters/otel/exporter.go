package otel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

const (
	serviceName    = "mclaude-statusline"
	serviceVersion = "1.0.0"
)

// ErrDisabled is returned by NewExporter when OTEL export is not configured.
var ErrDisabled = errors.New("OTEL exporter is disabled or endpoint not configured")

// Exporter exports status line snapshots to an OTEL Collector.
//
// Session totals are cumulative per transcript, so they are reported as
// observable gauges of the latest snapshot rather than as counters.
type Exporter struct {
	provider *sdkmetric.MeterProvider

	rendersTotal   metric.Int64Counter
	contextTokens  metric.Int64ObservableGauge
	contextLimit   metric.Int64ObservableGauge
	contextPercent metric.Int64ObservableGauge
	costUSD        metric.Float64ObservableGauge
	linesAdded     metric.Int64ObservableGauge
	linesRemoved   metric.Int64ObservableGauge
	compactions    metric.Int64ObservableGauge

	mu     sync.Mutex
	latest *domain.Snapshot
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Active() {
		return nil, ErrDisabled
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	e, err := newExporter(ctx, sdkmetric.NewPeriodicReader(exp))
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(e.provider)
	return e, nil
}

func newExporter(ctx context.Context, reader sdkmetric.Reader) (*Exporter, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	e := &Exporter{provider: provider}

	if e.rendersTotal, err = meter.Int64Counter(
		"mclaude_statusline_renders_total",
		metric.WithDescription("Status line renders"),
		metric.WithUnit("{render}"),
	); err != nil {
		return nil, fmt.Errorf("creating renders counter: %w", err)
	}

	if e.contextTokens, err = meter.Int64ObservableGauge(
		"mclaude_statusline_context_tokens",
		metric.WithDescription("Tokens in the active context window, system overhead included"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("creating context tokens gauge: %w", err)
	}

	if e.contextLimit, err = meter.Int64ObservableGauge(
		"mclaude_statusline_context_limit",
		metric.WithDescription("Context window size of the session model"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("creating context limit gauge: %w", err)
	}

	if e.contextPercent, err = meter.Int64ObservableGauge(
		"mclaude_statusline_context_usage_percent",
		metric.WithDescription("Share of the context window in use"),
		metric.WithUnit("%"),
	); err != nil {
		return nil, fmt.Errorf("creating context percent gauge: %w", err)
	}

	if e.costUSD, err = meter.Float64ObservableGauge(
		"mclaude_statusline_session_cost_usd",
		metric.WithDescription("Estimated session cost in USD"),
		metric.WithUnit("USD"),
	); err != nil {
		return nil, fmt.Errorf("creating cost gauge: %w", err)
	}

	if e.linesAdded, err = meter.Int64ObservableGauge(
		"mclaude_statusline_lines_added",
		metric.WithDescription("Lines added by edit tools in the session"),
		metric.WithUnit("{line}"),
	); err != nil {
		return nil, fmt.Errorf("creating lines added gauge: %w", err)
	}

	if e.linesRemoved, err = meter.Int64ObservableGauge(
		"mclaude_statusline_lines_removed",
		metric.WithDescription("Lines removed by edit tools in the session"),
		metric.WithUnit("{line}"),
	); err != nil {
		return nil, fmt.Errorf("creating lines removed gauge: %w", err)
	}

	if e.compactions, err = meter.Int64ObservableGauge(
		"mclaude_statusline_compactions",
		metric.WithDescription("Compact boundaries seen in the transcript"),
		metric.WithUnit("{compaction}"),
	); err != nil {
		return nil, fmt.Errorf("creating compactions gauge: %w", err)
	}

	_, err = meter.RegisterCallback(e.observe,
		e.contextTokens,
		e.contextLimit,
		e.contextPercent,
		e.costUSD,
		e.linesAdded,
		e.linesRemoved,
		e.compactions,
	)
	if err != nil {
		return nil, fmt.Errorf("registering snapshot callback: %w", err)
	}

	return e, nil
}

// ExportSnapshot records a rendered snapshot. Gauges report it on the next
// collection.
func (e *Exporter) ExportSnapshot(ctx context.Context, s domain.Snapshot) error {
	e.rendersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("state", s.State.String()),
		attribute.Bool("estimated", s.Tokens.Estimated),
	))

	if !s.HasTranscript() {
		return nil
	}
	e.mu.Lock()
	e.latest = &s
	e.mu.Unlock()
	return nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	e.mu.Lock()
	s := e.latest
	e.mu.Unlock()
	if s == nil {
		return nil
	}

	opt := metric.WithAttributes(snapshotAttributes(s)...)
	o.ObserveInt64(e.contextTokens, s.Tokens.ContextTokens(), opt)
	if s.Tokens.ContextLimit > 0 {
		o.ObserveInt64(e.contextLimit, s.Tokens.ContextLimit, opt)
	}
	if pct := s.Tokens.UsagePercent(); pct.Known {
		o.ObserveInt64(e.contextPercent, int64(pct.Value), opt)
	}
	o.ObserveFloat64(e.costUSD, s.Session.CostUSD.InexactFloat64(), opt)
	o.ObserveInt64(e.linesAdded, s.Session.LinesAdded, opt)
	o.ObserveInt64(e.linesRemoved, s.Session.LinesRemoved, opt)
	o.ObserveInt64(e.compactions, int64(s.Tokens.Boundaries), opt)
	return nil
}

func snapshotAttributes(s *domain.Snapshot) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("session_id", s.Tokens.SessionID),
		attribute.String("model", s.Tokens.Model),
	}
}

// Close shuts down the exporter and flushes any pending metrics. The final
// collection still observes the latest snapshot.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
