// Package message builds and parses GraphPipe request and response buffers.
//
// A request buffer is a finished flatbuffers Request table whose union holds an
// InferRequest; a response buffer is a finished InferResponse table. Tensors travel as
// Tensor tables carrying the wire type tag, the shape and either a little-endian byte
// payload or a string list.
//
//	body := message.BuildRequest(&message.Request{Inputs: []tensor.Tensor{in}})
//	// POST body, read reply
//	resp, err := message.ParseResponse(reply)
//
// Parsing never panics: truncated or corrupt buffers, unknown type tags and payloads
// that disagree with their shape fail with errs.ErrMalformedMessage. Parsed tensors own
// copies of their payloads and do not reference the input buffer.
package message

import (
	"fmt"

	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/tensor"
)

// Request is an inference request.
//
// Name counts are not checked against Inputs here; the remote client enforces that.
type Request struct {
	// InputNames optionally names each input tensor, in order.
	InputNames []string
	// OutputNames optionally selects the outputs to return.
	OutputNames []string
	// Config is an opaque model configuration string. Empty means absent.
	Config string
	// Inputs are the input tensors.
	Inputs []tensor.Tensor
}

// Response is an inference response.
type Response struct {
	// Outputs are the output tensors, in the order the server returned them.
	Outputs []tensor.Tensor
	// Errors are the errors reported by the server.
	Errors []ServerError
}

// Err returns the first server error, or nil when the response carries none.
func (r *Response) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}

	e := r.Errors[0]

	return &e
}

// ServerError is an error record reported by the server inside a response.
type ServerError struct {
	Code    int64
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("graphpipe server error %d: %s", e.Code, e.Message)
}

// Is reports whether target is errs.ErrServer.
func (e *ServerError) Is(target error) bool {
	return target == errs.ErrServer
}
