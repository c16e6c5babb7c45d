package remote

import (
	"context"
	"io"
)

// Transport sends a finished request buffer to endpoint and returns the response
// buffer. Implementations must be safe for concurrent use.
type Transport interface {
	Send(ctx context.Context, endpoint string, body []byte) ([]byte, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, endpoint string, body []byte) ([]byte, error)

// Send calls f.
func (f TransportFunc) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return f(ctx, endpoint, body)
}

// CleanlyCloseBody drains and closes an HTTP response body so the connection can be
// reused.
func CleanlyCloseBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}

	_, _ = io.Copy(io.Discard, body)

	return body.Close()
}
