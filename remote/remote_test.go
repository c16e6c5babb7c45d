package remote

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monktastic/graphpipe-go/compress"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
	"github.com/monktastic/graphpipe-go/message"
	"github.com/monktastic/graphpipe-go/tensor"
)

type recorded struct {
	mu     sync.Mutex
	req    *message.Request
	header http.Header
}

func (r *recorded) last() (*message.Request, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.req, r.header
}

// newModelServer serves model over HTTP, decoding and encoding bodies the way a
// GraphPipe server does.
func newModelServer(t *testing.T, model func(*message.Request) *message.Response) (*httptest.Server, *recorded) {
	t.Helper()

	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		codec, err := compress.ForContentEncoding(r.Header.Get("Content-Encoding"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		raw, err := codec.Decompress(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		req, err := message.ParseRequest(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		rec.mu.Lock()
		rec.req, rec.header = req, r.Header.Clone()
		rec.mu.Unlock()

		out := message.BuildResponse(model(req))
		if enc := r.Header.Get("Accept-Encoding"); enc != "" {
			respCodec, err := compress.ForContentEncoding(enc)
			if err == nil {
				if out, err = respCodec.Compress(out); err != nil {
					http.Error(w, err.Error(), http.StatusInternalServerError)
					return
				}
				w.Header().Set("Content-Encoding", enc)
			}
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(out)
	}))
	t.Cleanup(srv.Close)

	return srv, rec
}

func echo(req *message.Request) *message.Response {
	return &message.Response{Outputs: req.Inputs}
}

func newClient(t *testing.T, opts ...Option) *Client {
	t.Helper()

	c, err := New(opts...)
	require.NoError(t, err)

	return c
}

func mustTensor(t *testing.T, v any) tensor.Tensor {
	t.Helper()

	tn, err := tensor.FromNested(v)
	require.NoError(t, err)

	return tn
}

func TestExecute_RoundTrip(t *testing.T) {
	srv, rec := newModelServer(t, echo)
	c := newClient(t)

	in := mustTensor(t, [][]float32{{1, 2, 3}, {4, 5, 6}})
	out, err := c.Execute(context.Background(), srv.URL, in)
	require.NoError(t, err)
	require.True(t, in.Equal(out))

	nested, err := tensor.ToNested(out)
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 2, 3}, {4, 5, 6}}, nested)

	req, header := rec.last()
	require.Nil(t, req.InputNames)
	require.Nil(t, req.OutputNames)
	require.Empty(t, req.Config)
	require.Equal(t, "application/octet-stream", header.Get("Content-Type"))
	require.Empty(t, header.Get("Content-Encoding"))
}

func TestExecuteNamed(t *testing.T) {
	srv, rec := newModelServer(t, echo)
	c := newClient(t)

	in := mustTensor(t, []string{"hello", "world"})
	out, err := c.ExecuteNamed(context.Background(), srv.URL, in, "text", "embedding", `{"mode":"fast"}`)
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world"}, out.Strings())

	req, _ := rec.last()
	require.Equal(t, []string{"text"}, req.InputNames)
	require.Equal(t, []string{"embedding"}, req.OutputNames)
	require.Equal(t, `{"mode":"fast"}`, req.Config)
}

func TestExecuteMulti_OutputsInServerOrder(t *testing.T) {
	srv, rec := newModelServer(t, func(req *message.Request) *message.Response {
		outs := make([]tensor.Tensor, len(req.Inputs))
		for i, in := range req.Inputs {
			outs[len(outs)-1-i] = in
		}

		return &message.Response{Outputs: outs}
	})
	c := newClient(t)

	a := mustTensor(t, []int64{1, 2})
	b := mustTensor(t, [][]float64{{0.5}, {1.5}})
	outs, err := c.ExecuteMulti(context.Background(), srv.URL,
		[]tensor.Tensor{a, b}, []string{"a", "b"}, []string{"y", "x", "unused"}, "")
	require.NoError(t, err)
	require.Len(t, outs, 2)
	require.True(t, b.Equal(outs[0]))
	require.True(t, a.Equal(outs[1]))

	req, _ := rec.last()
	require.Equal(t, []string{"a", "b"}, req.InputNames)
	require.Equal(t, []string{"y", "x", "unused"}, req.OutputNames)
}

func TestExecuteMulti_DefaultConfig(t *testing.T) {
	srv, rec := newModelServer(t, echo)
	c := newClient(t, WithDefaultConfig("base"))
	in := mustTensor(t, []int8{1})

	_, err := c.ExecuteMulti(context.Background(), srv.URL, []tensor.Tensor{in}, nil, nil, "")
	require.NoError(t, err)
	req, _ := rec.last()
	require.Equal(t, "base", req.Config)

	_, err = c.ExecuteMulti(context.Background(), srv.URL, []tensor.Tensor{in}, nil, nil, "override")
	require.NoError(t, err)
	req, _ = rec.last()
	require.Equal(t, "override", req.Config)
}

func TestExecuteMulti_CallerErrors(t *testing.T) {
	var sent atomic.Int32
	c := newClient(t, WithTransport(TransportFunc(func(context.Context, string, []byte) ([]byte, error) {
		sent.Add(1)
		return nil, errors.New("unreachable")
	})))
	in := mustTensor(t, []int32{1})

	_, err := c.ExecuteMulti(context.Background(), "x", []tensor.Tensor{in, in}, []string{"only-one"}, nil, "")
	require.ErrorIs(t, err, errs.ErrNameCountMismatch)

	_, err = c.ExecuteMulti(context.Background(), "x", nil, nil, nil, "")
	require.ErrorIs(t, err, errs.ErrNoInputs)

	require.Zero(t, sent.Load())
}

func TestExecute_ServerError(t *testing.T) {
	srv, _ := newModelServer(t, func(*message.Request) *message.Response {
		return &message.Response{Errors: []message.ServerError{{Code: 42, Message: "input must be rank 2"}}}
	})
	c := newClient(t)

	_, err := c.Execute(context.Background(), srv.URL, mustTensor(t, []float32{1}))
	require.ErrorIs(t, err, errs.ErrServer)

	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, int64(42), serr.Code)
	require.Equal(t, "input must be rank 2", serr.Message)
}

func TestExecute_NoOutputs(t *testing.T) {
	srv, _ := newModelServer(t, func(*message.Request) *message.Response {
		return &message.Response{}
	})
	c := newClient(t)

	_, err := c.Execute(context.Background(), srv.URL, mustTensor(t, []float32{1}))
	require.ErrorIs(t, err, errs.ErrMalformedMessage)
}

func TestExecute_TransportErrorUnchanged(t *testing.T) {
	sentinel := errors.New("link down")
	c := newClient(t, WithTransport(TransportFunc(func(context.Context, string, []byte) ([]byte, error) {
		return nil, sentinel
	})))

	_, err := c.Execute(context.Background(), "model", mustTensor(t, []float32{1}))
	require.Equal(t, sentinel, err)
}

func TestHTTPTransport_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	c := newClient(t)
	_, err := c.Execute(context.Background(), endpoint, mustTensor(t, []float32{1}))

	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
}

func TestHTTPTransport_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newClient(t)
	_, err := c.Execute(context.Background(), srv.URL, mustTensor(t, []float32{1}))
	require.ErrorIs(t, err, errs.ErrUnexpectedStatus)
	require.ErrorContains(t, err, "500")
	require.ErrorContains(t, err, "model exploded")
}

func TestHTTPTransport_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not a flatbuffer"))
	}))
	defer srv.Close()

	c := newClient(t)
	_, err := c.Execute(context.Background(), srv.URL, mustTensor(t, []float32{1}))
	require.ErrorIs(t, err, errs.ErrMalformedMessage)
}

func TestHTTPTransport_UnknownContentEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write([]byte{1, 2, 3})
	}))
	defer srv.Close()

	c := newClient(t)
	_, err := c.Execute(context.Background(), srv.URL, mustTensor(t, []float32{1}))
	require.ErrorIs(t, err, errs.ErrMalformedMessage)
}

func TestHTTPTransport_MaxResponseSize(t *testing.T) {
	srv, _ := newModelServer(t, echo)

	transport, err := NewHTTPTransport(WithMaxResponseSize(16))
	require.NoError(t, err)
	c := newClient(t, WithTransport(transport))

	_, err = c.Execute(context.Background(), srv.URL, mustTensor(t, make([]float64, 64)))
	require.ErrorIs(t, err, errs.ErrMalformedMessage)
	require.ErrorContains(t, err, "exceeds 16 bytes")
}

func TestHTTPTransport_Compression(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			srv, rec := newModelServer(t, echo)

			transport, err := NewHTTPTransport(WithCompression(ct))
			require.NoError(t, err)
			c := newClient(t, WithTransport(transport))

			in := mustTensor(t, [][]float32{{1, 1, 1, 1}, {2, 2, 2, 2}})
			out, err := c.Execute(context.Background(), srv.URL, in)
			require.NoError(t, err)
			require.True(t, in.Equal(out))

			_, header := rec.last()
			require.Equal(t, ct.ContentEncoding(), header.Get("Content-Encoding"))
			require.Equal(t, ct.ContentEncoding(), header.Get("Accept-Encoding"))
		})
	}
}

func TestHTTPTransport_HeadersAndTimeout(t *testing.T) {
	srv, rec := newModelServer(t, echo)

	transport, err := NewHTTPTransport(
		WithHTTPClient(&http.Client{}),
		WithTimeout(5*time.Second),
		WithHeader("Authorization", "Bearer token"),
	)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, transport.client.Timeout)

	c := newClient(t, WithTransport(transport))
	_, err = c.Execute(context.Background(), srv.URL, mustTensor(t, []int16{7}))
	require.NoError(t, err)

	_, header := rec.last()
	require.Equal(t, "Bearer token", header.Get("Authorization"))
}

func TestHTTPTransport_ContextCanceled(t *testing.T) {
	srv, _ := newModelServer(t, echo)
	c := newClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Execute(ctx, srv.URL, mustTensor(t, []int16{7}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestOptions_Invalid(t *testing.T) {
	_, err := NewHTTPTransport(WithHTTPClient(nil))
	require.Error(t, err)

	_, err = NewHTTPTransport(WithTimeout(0))
	require.Error(t, err)

	_, err = NewHTTPTransport(WithMaxResponseSize(-1))
	require.Error(t, err)

	_, err = NewHTTPTransport(WithCompression(format.CompressionType(99)))
	require.ErrorIs(t, err, errs.ErrKindNotSupported)

	_, err = New(WithTransport(nil))
	require.Error(t, err)

	_, err = New(WithLogger(nil))
	require.Error(t, err)

	_, err = New(WithRegistry(nil))
	require.Error(t, err)
}

type recordingHook struct {
	mu     sync.Mutex
	starts []CallInfo
	stats  []CallStats
	errs   []error
	tokens []HookToken
}

type ctxKey struct{}

func (h *recordingHook) OnCallStart(ctx context.Context, info CallInfo) (context.Context, HookToken) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts = append(h.starts, info)

	return context.WithValue(ctx, ctxKey{}, "hooked"), len(h.starts)
}

func (h *recordingHook) OnCallEnd(ctx context.Context, token HookToken, _ CallInfo, stats *CallStats, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats = append(h.stats, *stats)
	h.errs = append(h.errs, err)
	h.tokens = append(h.tokens, token)
}

func TestCallHook(t *testing.T) {
	srv, _ := newModelServer(t, echo)

	var seenCtx atomic.Value
	inner, err := NewHTTPTransport()
	require.NoError(t, err)
	transport := TransportFunc(func(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
		seenCtx.Store(ctx.Value(ctxKey{}))
		return inner.Send(ctx, endpoint, body)
	})

	hook := &recordingHook{}
	c := newClient(t, WithTransport(transport), WithCallHook(hook))

	in := mustTensor(t, [][]int32{{1, 2}, {3, 4}})
	_, err = c.ExecuteMulti(context.Background(), srv.URL, []tensor.Tensor{in}, []string{"x"}, nil, "cfg")
	require.NoError(t, err)
	require.Equal(t, "hooked", seenCtx.Load())

	_, err = c.ExecuteMulti(context.Background(), "", []tensor.Tensor{in}, nil, nil, "")
	require.Error(t, err)

	require.Len(t, hook.starts, 2)
	require.Equal(t, CallInfo{Endpoint: srv.URL, InputNames: []string{"x"}, Inputs: 1, HasConfig: true}, hook.starts[0])

	ok := hook.stats[0]
	require.Equal(t, int64(4), ok.InputElements)
	require.Equal(t, int64(4), ok.OutputElements)
	require.Equal(t, 1, ok.Outputs)
	require.Positive(t, ok.RequestBytes)
	require.Positive(t, ok.ResponseBytes)
	require.Positive(t, ok.Duration)
	require.NoError(t, hook.errs[0])
	require.Equal(t, []HookToken{1, 2}, hook.tokens)

	require.Error(t, hook.errs[1])
	require.Zero(t, hook.stats[1].ResponseBytes)
}

func TestCallHook_NotCalledForCallerErrors(t *testing.T) {
	hook := &recordingHook{}
	c := newClient(t, WithCallHook(hook))

	_, err := c.ExecuteMulti(context.Background(), "x", nil, nil, nil, "")
	require.ErrorIs(t, err, errs.ErrNoInputs)
	require.Empty(t, hook.starts)
}

type panickingHook struct{}

func (panickingHook) OnCallStart(context.Context, CallInfo) (context.Context, HookToken) {
	panic("start")
}

func (panickingHook) OnCallEnd(context.Context, HookToken, CallInfo, *CallStats, error) {
	panic("end")
}

func TestCallHook_PanicRecovered(t *testing.T) {
	srv, _ := newModelServer(t, echo)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	c := newClient(t, WithCallHook(panickingHook{}), WithLogger(logger))

	in := mustTensor(t, []float32{1})
	out, err := c.Execute(context.Background(), srv.URL, in)
	require.NoError(t, err)
	require.True(t, in.Equal(out))

	require.Contains(t, logs.String(), "call hook start panic")
	require.Contains(t, logs.String(), "call hook end panic")
}

func TestClient_DebugLogging(t *testing.T) {
	srv, _ := newModelServer(t, echo)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newClient(t, WithLogger(logger))

	_, err := c.Execute(context.Background(), srv.URL, mustTensor(t, []float32{1}))
	require.NoError(t, err)
	require.Contains(t, logs.String(), "graphpipe request")
	require.Contains(t, logs.String(), "graphpipe response")
	require.Contains(t, logs.String(), "digest=")
}

func TestClient_Concurrent(t *testing.T) {
	srv, _ := newModelServer(t, echo)
	c := newClient(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()

			in := mustTensor(t, []int64{int64(i), int64(i) * 2})
			out, err := c.Execute(context.Background(), srv.URL, in)
			require.NoError(t, err)
			require.True(t, in.Equal(out))
		}()
	}
	wg.Wait()
}
