package metrics

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	serviceName    = "playabooth"
	serviceVersion = "1.0.0"
)

// Exporter records booth metrics to an OTEL Collector.
type Exporter struct {
	provider         *sdkmetric.MeterProvider
	generationsTotal metric.Int64Counter
	sessionsTotal    metric.Int64Counter
	feedbackTotal    metric.Int64Counter
}

// New returns an OTLP exporter when cfg enables one, otherwise a no-op recorder.
// Exporter setup failures degrade to the no-op recorder with a warning.
func New(ctx context.Context, cfg Config) Recorder {
	if !cfg.Enabled {
		return NewNoOpRecorder()
	}
	exp, err := NewExporter(ctx, cfg)
	if err != nil {
		slog.Warn("metrics.New: OTEL exporter unavailable, metrics disabled", "error", err)
		return NewNoOpRecorder()
	}
	slog.Info("metrics.New: OTEL exporter enabled", "endpoint", cfg.Endpoint, "insecure", cfg.Insecure)
	return exp
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
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
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return newExporter(provider)
}

// newExporter registers the booth instruments on provider.
func newExporter(provider *sdkmetric.MeterProvider) (*Exporter, error) {
	meter := provider.Meter(serviceName)

	generationsTotal, err := meter.Int64Counter(
		"playabooth_generations_total",
		metric.WithDescription("Nickname generation attempts by style and outcome"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating generations counter: %w", err)
	}

	sessionsTotal, err := meter.Int64Counter(
		"playabooth_sessions_logged_total",
		metric.WithDescription("Session write attempts by outcome"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sessions counter: %w", err)
	}

	feedbackTotal, err := meter.Int64Counter(
		"playabooth_feedback_total",
		metric.WithDescription("Feedback forms by outcome"),
		metric.WithUnit("{form}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating feedback counter: %w", err)
	}

	return &Exporter{
		provider:         provider,
		generationsTotal: generationsTotal,
		sessionsTotal:    sessionsTotal,
		feedbackTotal:    feedbackTotal,
	}, nil
}

func (e *Exporter) GenerationCompleted(ctx context.Context, style, outcome string) {
	e.generationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("style", style),
		attribute.String("outcome", outcome),
	))
}

func (e *Exporter) SessionLogged(ctx context.Context, outcome string) {
	e.sessionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (e *Exporter) FeedbackRecorded(ctx context.Context, outcome string) {
	e.feedbackTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Close shuts down the exporter and flushes any pending metrics.
func (e *Exporter) Close(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
