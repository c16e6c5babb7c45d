package otelhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/monktastic/graphpipe-go/message"
	"github.com/monktastic/graphpipe-go/remote"
	"github.com/monktastic/graphpipe-go/tensor"
)

type fixture struct {
	spans  *tracetest.SpanRecorder
	reader *sdkmetric.ManualReader
	cfg    Config
}

func newFixture() *fixture {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()

	cfg := DefaultConfig()
	cfg.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	cfg.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	cfg.CustomAttributes = []attribute.KeyValue{attribute.String("model", "resnet")}

	return &fixture{spans: spans, reader: reader, cfg: cfg}
}

// echoTransport answers every request with its own inputs.
func echoTransport(_ context.Context, _ string, body []byte) ([]byte, error) {
	req, err := message.ParseRequest(body)
	if err != nil {
		return nil, err
	}

	return message.BuildResponse(&message.Response{Outputs: req.Inputs}), nil
}

func newClient(t *testing.T, cfg Config, transport remote.TransportFunc) *remote.Client {
	t.Helper()

	c, err := remote.New(remote.WithTransport(transport), remote.WithCallHook(New(cfg)))
	require.NoError(t, err)

	return c
}

func attrMap(kvs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[kv.Key] = kv.Value
	}

	return m
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}

	return out
}

func TestHook_SuccessfulCall(t *testing.T) {
	require := require.New(t)
	f := newFixture()
	c := newClient(t, f.cfg, echoTransport)

	in, err := tensor.FromNested([][]float32{{1, 2}, {3, 4}})
	require.NoError(err)

	_, err = c.ExecuteNamed(context.Background(), "http://model:9000", in, "x", "y", "")
	require.NoError(err)

	ended := f.spans.Ended()
	require.Len(ended, 1)
	span := ended[0]
	require.Equal(spanName, span.Name())
	require.Equal(codes.Ok, span.Status().Code)

	attrs := attrMap(span.Attributes())
	require.Equal("http://model:9000", attrs["graphpipe.endpoint"].AsString())
	require.Equal(int64(1), attrs["graphpipe.inputs"].AsInt64())
	require.Equal([]string{"x"}, attrs["graphpipe.input_names"].AsStringSlice())
	require.Equal(int64(1), attrs["graphpipe.outputs"].AsInt64())
	require.Equal(int64(4), attrs["graphpipe.input_elements"].AsInt64())
	require.Positive(attrs["graphpipe.request_bytes"].AsInt64())
	require.Equal("resnet", attrs["model"].AsString())

	metrics := collect(t, f.reader)

	requests, ok := metrics["graphpipe.client.requests"].Data.(metricdata.Sum[int64])
	require.True(ok)
	require.Len(requests.DataPoints, 1)
	require.Equal(int64(1), requests.DataPoints[0].Value)
	status, _ := requests.DataPoints[0].Attributes.Value("status")
	require.Equal("ok", status.AsString())

	duration, ok := metrics["graphpipe.client.duration"].Data.(metricdata.Histogram[float64])
	require.True(ok)
	require.Len(duration.DataPoints, 1)
	require.Equal(uint64(1), duration.DataPoints[0].Count)
}

func TestHook_FailedCall(t *testing.T) {
	require := require.New(t)
	f := newFixture()

	serverErr := func(context.Context, string, []byte) ([]byte, error) {
		return message.BuildResponse(&message.Response{
			Errors: []message.ServerError{{Code: 3, Message: "bad shape"}},
		}), nil
	}
	c := newClient(t, f.cfg, serverErr)

	in, err := tensor.FromNested([]int32{1})
	require.NoError(err)

	_, err = c.Execute(context.Background(), "model", in)
	require.Error(err)

	span := f.spans.Ended()[0]
	require.Equal(codes.Error, span.Status().Code)
	require.Equal("graphpipe server error 3: bad shape", span.Status().Description)
	require.Equal("server", attrMap(span.Attributes())["graphpipe.error_type"].AsString())
	require.Len(span.Events(), 1)
	require.Equal("exception", span.Events()[0].Name)

	requests := collect(t, f.reader)["graphpipe.client.requests"].Data.(metricdata.Sum[int64])
	status, _ := requests.DataPoints[0].Attributes.Value("status")
	require.Equal("error", status.AsString())
}

func TestHook_TracingAndMetricsDisabled(t *testing.T) {
	f := newFixture()
	f.cfg.EnableTracing = false
	f.cfg.EnableMetrics = false
	c := newClient(t, f.cfg, echoTransport)

	in, err := tensor.FromNested([]int8{1})
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "model", in)
	require.NoError(t, err)

	require.Empty(t, f.spans.Ended())
	require.Empty(t, collect(t, f.reader))
}

func TestHook_NoExceptionEvents(t *testing.T) {
	f := newFixture()
	f.cfg.RecordExceptions = false

	c := newClient(t, f.cfg, func(context.Context, string, []byte) ([]byte, error) {
		return nil, errors.New("refused")
	})

	in, err := tensor.FromNested([]int8{1})
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), "model", in)
	require.EqualError(t, err, "refused")

	span := f.spans.Ended()[0]
	require.Equal(t, codes.Error, span.Status().Code)
	require.Empty(t, span.Events())
	require.Equal(t, "*errors.errorString", attrMap(span.Attributes())["graphpipe.error_type"].AsString())
}

func TestErrorType(t *testing.T) {
	require.Equal(t, "server", errorType(&remote.ServerError{Code: 1}))
}

func TestNew_GlobalProviders(t *testing.T) {
	h := New(DefaultConfig())

	ctx, token := h.OnCallStart(context.Background(), remote.CallInfo{Endpoint: "model"})
	require.NotNil(t, ctx)
	require.NotNil(t, token)
	require.NotPanics(t, func() {
		h.OnCallEnd(ctx, token, remote.CallInfo{Endpoint: "model"}, &remote.CallStats{}, nil)
		h.OnCallEnd(ctx, "foreign token", remote.CallInfo{}, nil, nil)
	})
}
