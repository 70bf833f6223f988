package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the OpenTelemetry meter and tracer used by the workers and
// the aggregators. The meter is exported through the Prometheus registry.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	jobCounter     otelmetric.Int64Counter
	jobDuration    otelmetric.Float64Histogram
}

// Span exporters selectable from configuration.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

type Option func(*options)

type options struct {
	spanExporter sdktrace.SpanExporter
	sampleRatio  float64
}

// WithSpanExporter sends finished spans to exp through a batch processor.
func WithSpanExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) { o.spanExporter = exp }
}

// WithSampleRatio sets the share of root spans that are sampled. Values outside (0, 1] sample everything.
func WithSampleRatio(ratio float64) Option {
	return func(o *options) { o.sampleRatio = ratio }
}

// NewSpanExporter builds the exporter named by kind. It returns nil for "none" or an empty kind.
func NewSpanExporter(kind string, w io.Writer) (sdktrace.SpanExporter, error) {
	switch kind {
	case "", ExporterNone:
		return nil, nil
	case ExporterStdout:
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, err
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown span exporter %q", kind)
	}
}

// New wires the providers. Without a span exporter the tracer is a noop. Metric setup
// failures leave the meter instruments nil, which turns the Record* calls into no-ops.
func New(serviceName string, opts ...Option) (*Observability, error) {
	cfg := options{sampleRatio: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	o := &Observability{tracer: noop.NewTracerProvider().Tracer(serviceName)}
	if cfg.spanExporter != nil {
		sampler := sdktrace.AlwaysSample()
		if cfg.sampleRatio > 0 && cfg.sampleRatio < 1 {
			sampler = sdktrace.TraceIDRatioBased(cfg.sampleRatio)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(cfg.spanExporter),
			sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
			sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
		)
		otel.SetTracerProvider(tp)
		o.tracerProvider = tp
		o.tracer = tp.Tracer(serviceName)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return o, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	o.meterProvider = provider
	o.meter = provider.Meter(serviceName)

	o.jobCounter, err = o.meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	if err != nil {
		return o, err
	}

	o.jobDuration, err = o.meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	return o, err
}

// NewNoop returns an Observability whose spans are never recorded.
func NewNoop() *Observability {
	return &Observability{tracer: noop.NewTracerProvider().Tracer("noop")}
}

// StartSpan starts a span named name with the given string attributes.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, trace.Span) {
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kv = append(kv, attribute.String(k, v))
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(kv...))
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o.jobCounter != nil {
		o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o.jobDuration != nil {
		o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("task_type", taskType),
			attribute.String("status", status),
		))
	}
}

// Shutdown flushes pending spans to the exporter and stops both providers.
func (o *Observability) Shutdown(ctx context.Context) {
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
