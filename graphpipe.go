// Package graphpipe is a client library for GraphPipe, a protocol for sending tensors to
// remote model servers.
//
// A request carries one or more typed N-dimensional tensors, optional input and output
// names, and an opaque config string, encoded as a flatbuffers message and POSTed to a
// model endpoint. The response carries the output tensors.
//
// # Core Features
//
//   - Tensors built from nested Go slices, flat slices plus a shape, or raw payloads
//   - Shape inference that rejects ragged and empty arrays
//   - A type registry mapping wire tags and Go element types to little-endian converters
//   - Zero-copy bulk packing of numeric slices on little-endian hosts
//   - Optional request compression (Zstd, S2, LZ4)
//   - gonum matrix interop through the dense package
//   - OpenTelemetry call instrumentation through the otelhook package
//
// # Basic Usage
//
// Building a tensor and calling a model:
//
//	import "github.com/monktastic/graphpipe-go"
//
//	input, err := graphpipe.NewTensor([][]float32{{0.1, 0.2, 0.3}})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	output, err := graphpipe.Execute(ctx, "http://127.0.0.1:9000", input)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	nested, _ := graphpipe.ToNested(output)
//	fmt.Println(nested.([][]float32))
//
// # Package Structure
//
// This package provides top-level wrappers around the tensor, message and remote
// packages for the common cases. For custom registries, transports, hooks or
// compression, use those packages directly.
package graphpipe

import (
	"context"
	"sync"

	"github.com/monktastic/graphpipe-go/message"
	"github.com/monktastic/graphpipe-go/remote"
	"github.com/monktastic/graphpipe-go/tensor"
)

// Tensor is a typed N-dimensional array in wire layout.
type Tensor = tensor.Tensor

// Shape lists the extent of each tensor dimension, outermost first.
type Shape = tensor.Shape

var defaultClient = sync.OnceValues(func() (*remote.Client, error) {
	return remote.New()
})

// NewTensor builds a tensor from a rectangular nested array.
//
// The input may be any nesting of slices or arrays ending in one of the supported
// element kinds: int8, int16, int32, int64, float32, float64 or string. Every sibling
// sub-array must have the same length.
//
// Parameters:
//   - v: The nested array, e.g. [][]float32 or [2][3]int64
//
// Returns:
//   - Tensor: The tensor holding a little-endian copy of the values.
//   - error: errs.ErrNotAnArray, errs.ErrEmptyArray, errs.ErrRaggedArray or
//     errs.ErrUnsupportedElementType.
//
// Example:
//
//	t, err := graphpipe.NewTensor([][]int16{{1, 2}, {3, 4}})
//	// t.Shape() == Shape{2, 2}, t.Type() == format.TypeInt16
func NewTensor(v any) (Tensor, error) {
	return tensor.FromNested(v)
}

// NewTensorFromFlat builds a tensor from a one-dimensional slice and an explicit shape.
//
// The product of shape must equal len(flat).
//
// Example:
//
//	t, err := graphpipe.NewTensorFromFlat([]float64{1, 2, 3, 4, 5, 6}, graphpipe.Shape{2, 3})
func NewTensorFromFlat(flat any, shape Shape) (Tensor, error) {
	return tensor.FromFlat(flat, shape)
}

// ToNested rebuilds the nested Go array of t, e.g. [][]float32 for a rank-2 Float32
// tensor. A rank-0 tensor yields its single scalar.
func ToNested(t Tensor) (any, error) {
	return tensor.ToNested(t)
}

// ToFlat returns the elements of t as a one-dimensional slice in row-major order.
func ToFlat(t Tensor) (any, error) {
	return tensor.ToFlat(t)
}

// NewClient creates a remote client with custom options.
//
// Available options:
//   - remote.WithTransport(remote.Transport)
//   - remote.WithLogger(*slog.Logger)
//   - remote.WithCallHook(remote.CallHook)
//   - remote.WithRegistry(*encoding.Registry)
//   - remote.WithDefaultConfig(string)
//
// Example:
//
//	transport, _ := remote.NewHTTPTransport(remote.WithCompression(format.CompressionZstd))
//	client, err := graphpipe.NewClient(remote.WithTransport(transport))
func NewClient(opts ...remote.Option) (*remote.Client, error) {
	return remote.New(opts...)
}

// Execute sends input to the model at endpoint and returns the first output tensor.
//
// It uses a shared client over http.DefaultClient. Transport errors are returned
// unchanged; errors reported by the server match errs.ErrServer.
func Execute(ctx context.Context, endpoint string, input Tensor) (Tensor, error) {
	c, err := defaultClient()
	if err != nil {
		return Tensor{}, err
	}

	return c.Execute(ctx, endpoint, input)
}

// ExecuteMulti sends several inputs in one request and returns every output tensor.
//
// inputNames may be empty; otherwise it must name every input. outputNames selects the
// outputs to compute and may be empty. config is passed to the model as-is.
func ExecuteMulti(ctx context.Context, endpoint string, inputs []Tensor, inputNames, outputNames []string, config string) ([]Tensor, error) {
	c, err := defaultClient()
	if err != nil {
		return nil, err
	}

	return c.ExecuteMulti(ctx, endpoint, inputs, inputNames, outputNames, config)
}

// BuildRequest encodes an inference request without sending it.
//
// Example:
//
//	body := graphpipe.BuildRequest([]graphpipe.Tensor{input}, []string{"images"}, nil, "")
func BuildRequest(inputs []Tensor, inputNames, outputNames []string, config string) []byte {
	return message.BuildRequest(&message.Request{
		InputNames:  inputNames,
		OutputNames: outputNames,
		Config:      config,
		Inputs:      inputs,
	})
}

// ParseResponse decodes a response body into its output tensors.
//
// Server-reported errors are returned as *remote.ServerError.
func ParseResponse(buf []byte) ([]Tensor, error) {
	resp, err := message.ParseResponse(buf)
	if err != nil {
		return nil, err
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	return resp.Outputs, nil
}
