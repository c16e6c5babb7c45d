package message

import (
	"bytes"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/monktastic/graphpipe-go/encoding"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
	"github.com/monktastic/graphpipe-go/internal/graphpipefb"
	"github.com/monktastic/graphpipe-go/internal/options"
	"github.com/monktastic/graphpipe-go/tensor"
)

// minBufferSize is a root offset plus the root table's vtable offset.
const minBufferSize = 2 * flatbuffers.SizeUOffsetT

type parseConfig struct {
	codec *tensor.Codec
}

// ParseOption configures ParseRequest and ParseResponse.
type ParseOption = options.Option[*parseConfig]

// WithRegistry resolves tensor type tags through reg instead of encoding.Default().
func WithRegistry(reg *encoding.Registry) ParseOption {
	return options.NoError(func(c *parseConfig) {
		c.codec = tensor.NewCodec(reg)
	})
}

func newParseConfig(opts []ParseOption) (*parseConfig, error) {
	cfg := &parseConfig{codec: tensor.Default()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseResponse decodes a finished InferResponse buffer.
func ParseResponse(buf []byte, opts ...ParseOption) (resp *Response, err error) {
	cfg, err := newParseConfig(opts)
	if err != nil {
		return nil, err
	}

	if err := checkRoot(buf); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("%w: %v", errs.ErrMalformedMessage, r)
		}
	}()

	root := graphpipefb.GetRootAsInferResponse(buf, 0)
	resp = &Response{}

	n := root.OutputTensorsLength()
	if err := checkVectorLen(buf, n, flatbuffers.SizeUOffsetT, "output tensors"); err != nil {
		return nil, err
	}

	resp.Outputs = make([]tensor.Tensor, n)
	var fb graphpipefb.Tensor
	for i := 0; i < n; i++ {
		root.OutputTensors(&fb, i)
		if resp.Outputs[i], err = parseTensor(cfg.codec, buf, &fb); err != nil {
			return nil, fmt.Errorf("%w: output tensor %d: %w", errs.ErrMalformedMessage, i, err)
		}
	}

	n = root.ErrorsLength()
	if err := checkVectorLen(buf, n, flatbuffers.SizeUOffsetT, "errors"); err != nil {
		return nil, err
	}

	if n > 0 {
		resp.Errors = make([]ServerError, n)
		var fe graphpipefb.Error
		for i := 0; i < n; i++ {
			root.Errors(&fe, i)
			resp.Errors[i] = ServerError{Code: fe.Code(), Message: string(fe.Message())}
		}
	}

	return resp, nil
}

// ParseRequest decodes a finished Request buffer holding an InferRequest.
func ParseRequest(buf []byte, opts ...ParseOption) (req *Request, err error) {
	cfg, err := newParseConfig(opts)
	if err != nil {
		return nil, err
	}

	if err := checkRoot(buf); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			req, err = nil, fmt.Errorf("%w: %v", errs.ErrMalformedMessage, r)
		}
	}()

	root := graphpipefb.GetRootAsRequest(buf, 0)
	if typ := root.ReqType(); typ != graphpipefb.ReqInferRequest {
		return nil, fmt.Errorf("%w: request union holds %s, want InferRequest", errs.ErrMalformedMessage, typ)
	}

	var union flatbuffers.Table
	if !root.Req(&union) {
		return nil, fmt.Errorf("%w: request union is empty", errs.ErrMalformedMessage)
	}

	var infer graphpipefb.InferRequest
	infer.Init(union.Bytes, union.Pos)

	req = &Request{Config: string(infer.Config())}

	if req.InputNames, err = parseStrings(buf, infer.InputNamesLength(), infer.InputNames, "input names"); err != nil {
		return nil, err
	}
	if req.OutputNames, err = parseStrings(buf, infer.OutputNamesLength(), infer.OutputNames, "output names"); err != nil {
		return nil, err
	}

	n := infer.InputTensorsLength()
	if err := checkVectorLen(buf, n, flatbuffers.SizeUOffsetT, "input tensors"); err != nil {
		return nil, err
	}

	req.Inputs = make([]tensor.Tensor, n)
	var fb graphpipefb.Tensor
	for i := 0; i < n; i++ {
		infer.InputTensors(&fb, i)
		if req.Inputs[i], err = parseTensor(cfg.codec, buf, &fb); err != nil {
			return nil, fmt.Errorf("%w: input tensor %d: %w", errs.ErrMalformedMessage, i, err)
		}
	}

	return req, nil
}

// parseTensor copies one Tensor table out of buf.
func parseTensor(codec *tensor.Codec, buf []byte, fb *graphpipefb.Tensor) (tensor.Tensor, error) {
	rank := fb.ShapeLength()
	if err := checkVectorLen(buf, rank, flatbuffers.SizeInt64, "shape"); err != nil {
		return tensor.Tensor{}, err
	}

	shape := make(tensor.Shape, rank)
	for j := range shape {
		shape[j] = fb.Shape(j)
	}

	typ := format.Type(fb.Type())
	if typ == format.TypeString {
		strs, err := parseStrings(buf, fb.StringValLength(), fb.StringVal, "string values")
		if err != nil {
			return tensor.Tensor{}, err
		}
		if strs == nil {
			strs = []string{}
		}

		return tensor.NewStrings(shape, strs)
	}

	return codec.New(typ, shape, bytes.Clone(fb.DataBytes()))
}

func parseStrings(buf []byte, n int, at func(int) []byte, what string) ([]string, error) {
	if err := checkVectorLen(buf, n, flatbuffers.SizeUOffsetT, what); err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	out := make([]string, n)
	for i := range out {
		out[i] = string(at(i))
	}

	return out, nil
}

// checkRoot rejects buffers too short to hold a root table.
func checkRoot(buf []byte) error {
	if len(buf) < minBufferSize {
		return fmt.Errorf("%w: buffer of %d bytes is too short", errs.ErrMalformedMessage, len(buf))
	}

	root := int(flatbuffers.GetUOffsetT(buf))
	if root < flatbuffers.SizeUOffsetT || root > len(buf)-flatbuffers.SizeSOffsetT {
		return fmt.Errorf("%w: root offset %d out of range for %d bytes", errs.ErrMalformedMessage, root, len(buf))
	}

	return nil
}

// checkVectorLen rejects vector lengths that cannot fit in buf, so that a corrupt length
// never drives a large allocation.
func checkVectorLen(buf []byte, n, elemSize int, what string) error {
	if n > len(buf)/elemSize {
		return fmt.Errorf("%w: %s length %d exceeds a %d-byte buffer", errs.ErrMalformedMessage, what, n, len(buf))
	}

	return nil
}
