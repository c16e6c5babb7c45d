package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/monktastic/graphpipe-go/compress"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
	"github.com/monktastic/graphpipe-go/internal/options"
	"github.com/monktastic/graphpipe-go/internal/pool"
)

const (
	contentType = "application/octet-stream"

	// DefaultMaxResponseSize caps the response body read by HTTPTransport.
	DefaultMaxResponseSize = compress.MaxDecompressedSize

	// statusBodyLimit caps how much of a failed response body is quoted in the error.
	statusBodyLimit = 512
)

// HTTPTransport posts request buffers over HTTP.
type HTTPTransport struct {
	client          *http.Client
	codec           compress.Codec
	header          http.Header
	maxResponseSize int64
}

var _ Transport = (*HTTPTransport)(nil)

// HTTPOption configures an HTTPTransport.
type HTTPOption = options.Option[*HTTPTransport]

// NewHTTPTransport returns an HTTP transport. Without options it uses
// http.DefaultClient and sends uncompressed bodies.
func NewHTTPTransport(opts ...HTTPOption) (*HTTPTransport, error) {
	t := &HTTPTransport{
		client:          http.DefaultClient,
		codec:           compress.NewNoOpCompressor(),
		header:          make(http.Header),
		maxResponseSize: DefaultMaxResponseSize,
	}

	if err := options.Apply(t, opts...); err != nil {
		return nil, err
	}

	return t, nil
}

// WithHTTPClient sets the HTTP client used to send requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return options.New(func(t *HTTPTransport) error {
		if client == nil {
			return errors.New("http client must not be nil")
		}
		t.client = client

		return nil
	})
}

// WithTimeout bounds each request, including reading the response body. It copies the
// configured client, so apply it after WithHTTPClient.
func WithTimeout(d time.Duration) HTTPOption {
	return options.New(func(t *HTTPTransport) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", d)
		}

		c := *t.client
		c.Timeout = d
		t.client = &c

		return nil
	})
}

// WithCompression compresses request bodies with ct and advertises it in
// Content-Encoding and Accept-Encoding.
func WithCompression(ct format.CompressionType) HTTPOption {
	return options.New(func(t *HTTPTransport) error {
		codec, err := compress.GetCodec(ct)
		if err != nil {
			return err
		}
		t.codec = codec

		return nil
	})
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return options.NoError(func(t *HTTPTransport) {
		t.header.Add(key, value)
	})
}

// WithMaxResponseSize caps the response body size in bytes.
func WithMaxResponseSize(n int64) HTTPOption {
	return options.New(func(t *HTTPTransport) error {
		if n <= 0 {
			return fmt.Errorf("max response size must be positive, got %d", n)
		}
		t.maxResponseSize = n

		return nil
	})
}

// Send posts body to endpoint and returns the decoded response body.
//
// Errors from the HTTP client are returned unchanged. Non-2xx responses fail with
// errs.ErrUnexpectedStatus.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	payload, err := t.codec.Compress(body)
	if err != nil {
		return nil, fmt.Errorf("compress request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = t.header.Clone()
	req.Header.Set("Content-Type", contentType)
	if enc := t.codec.Type().ContentEncoding(); enc != "" {
		req.Header.Set("Content-Encoding", enc)
		req.Header.Set("Accept-Encoding", enc)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = CleanlyCloseBody(resp.Body) }()

	bb := pool.GetBodyBuffer()
	defer pool.PutBodyBuffer(bb)

	if _, err := bb.ReadLimited(resp.Body, t.maxResponseSize+1); err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s: %s", errs.ErrUnexpectedStatus,
			resp.StatusCode, http.StatusText(resp.StatusCode), quoteBody(bb.Bytes()))
	}

	if int64(bb.Len()) > t.maxResponseSize {
		return nil, fmt.Errorf("%w: response body exceeds %d bytes", errs.ErrMalformedMessage, t.maxResponseSize)
	}

	codec, err := compress.ForContentEncoding(resp.Header.Get("Content-Encoding"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedMessage, err)
	}

	if codec.Type() == format.CompressionNone {
		return slices.Clone(bb.Bytes()), nil
	}

	out, err := codec.Decompress(bb.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrMalformedMessage, err)
	}

	return out, nil
}

func quoteBody(b []byte) string {
	if len(b) > statusBodyLimit {
		return fmt.Sprintf("%q...", b[:statusBodyLimit])
	}

	return fmt.Sprintf("%q", b)
}
