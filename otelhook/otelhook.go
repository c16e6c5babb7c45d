// Package otelhook instruments a remote.Client with OpenTelemetry tracing and metrics.
//
// Usage:
//
//	client, err := remote.New(remote.WithCallHook(otelhook.New(otelhook.DefaultConfig())))
//
// Every call gets a client span named "graphpipe/infer". The request counter and the
// duration histogram carry the endpoint and an ok/error status.
package otelhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/remote"
)

const (
	instrumentationName = "github.com/monktastic/graphpipe-go/otelhook"
	spanName            = "graphpipe/infer"
)

// Config configures the OpenTelemetry hook.
type Config struct {
	// TracerProvider supplies the tracer. Defaults to otel.GetTracerProvider().
	TracerProvider trace.TracerProvider
	// MeterProvider supplies the meter. Defaults to otel.GetMeterProvider().
	MeterProvider metric.MeterProvider
	// EnableTracing enables span creation.
	EnableTracing bool
	// EnableMetrics enables counter and histogram recording.
	EnableMetrics bool
	// RecordExceptions calls RecordError on the span of a failed call.
	RecordExceptions bool
	// CustomAttributes are added to every span.
	CustomAttributes []attribute.KeyValue
}

// DefaultConfig enables tracing, metrics and error recording against the global
// providers.
func DefaultConfig() Config {
	return Config{
		EnableTracing:    true,
		EnableMetrics:    true,
		RecordExceptions: true,
	}
}

// New returns a remote.CallHook recording calls with cfg.
func New(cfg Config) remote.CallHook {
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}
	if cfg.MeterProvider == nil {
		cfg.MeterProvider = otel.GetMeterProvider()
	}

	h := &hook{
		cfg:    cfg,
		tracer: cfg.TracerProvider.Tracer(instrumentationName),
	}

	if cfg.EnableMetrics {
		meter := cfg.MeterProvider.Meter(instrumentationName)
		h.requests, _ = meter.Int64Counter("graphpipe.client.requests",
			metric.WithUnit("{request}"),
			metric.WithDescription("Number of inference calls"),
		)
		h.duration, _ = meter.Float64Histogram("graphpipe.client.duration",
			metric.WithUnit("s"),
			metric.WithDescription("Duration of inference calls"),
		)
	}

	return h
}

type hook struct {
	cfg      Config
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

type spanToken struct {
	span  trace.Span
	start time.Time
}

func (h *hook) OnCallStart(ctx context.Context, info remote.CallInfo) (context.Context, remote.HookToken) {
	if !h.cfg.EnableTracing {
		return ctx, &spanToken{start: time.Now()}
	}

	attrs := []attribute.KeyValue{
		attribute.String("graphpipe.endpoint", info.Endpoint),
		attribute.Int("graphpipe.inputs", info.Inputs),
		attribute.StringSlice("graphpipe.input_names", info.InputNames),
		attribute.StringSlice("graphpipe.output_names", info.OutputNames),
		attribute.Bool("graphpipe.config", info.HasConfig),
	}
	attrs = append(attrs, h.cfg.CustomAttributes...)

	ctx, span := h.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)

	return ctx, &spanToken{span: span, start: time.Now()}
}

func (h *hook) OnCallEnd(ctx context.Context, token remote.HookToken, info remote.CallInfo, stats *remote.CallStats, err error) {
	st, ok := token.(*spanToken)
	if !ok {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	if h.cfg.EnableMetrics {
		attrs := metric.WithAttributes(
			attribute.String("graphpipe.endpoint", info.Endpoint),
			attribute.String("status", status),
		)
		if h.requests != nil {
			h.requests.Add(ctx, 1, attrs)
		}
		if h.duration != nil {
			h.duration.Record(ctx, time.Since(st.start).Seconds(), attrs)
		}
	}

	if st.span == nil || !st.span.IsRecording() {
		return
	}

	if stats != nil {
		st.span.SetAttributes(
			attribute.Int("graphpipe.outputs", stats.Outputs),
			attribute.Int64("graphpipe.input_elements", stats.InputElements),
			attribute.Int64("graphpipe.output_elements", stats.OutputElements),
			attribute.Int64("graphpipe.request_bytes", stats.RequestBytes),
			attribute.Int64("graphpipe.response_bytes", stats.ResponseBytes),
		)
	}

	if err != nil {
		st.span.SetStatus(codes.Error, err.Error())
		if h.cfg.RecordExceptions {
			st.span.RecordError(err)
		}
		st.span.SetAttributes(attribute.String("graphpipe.error_type", errorType(err)))
	} else {
		st.span.SetStatus(codes.Ok, "")
	}

	st.span.End()
}

func errorType(err error) string {
	var serr *remote.ServerError
	switch {
	case errors.As(err, &serr):
		return "server"
	case errors.Is(err, errs.ErrUnexpectedStatus):
		return "status"
	case errors.Is(err, errs.ErrMalformedMessage):
		return "malformed"
	default:
		return fmt.Sprintf("%T", err)
	}
}
