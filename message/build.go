package message

import (
	"slices"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/monktastic/graphpipe-go/internal/graphpipefb"
	"github.com/monktastic/graphpipe-go/internal/pool"
	"github.com/monktastic/graphpipe-go/tensor"
)

var offsetPool = pool.NewSlicePool[flatbuffers.UOffsetT]()

// BuildRequest encodes req as a finished Request buffer. The returned slice is owned by
// the caller.
//
// Objects are written bottom-up: input names, output names, the tensor records, the
// config string, the InferRequest table and finally the Request root.
func BuildRequest(req *Request) []byte {
	b := pool.GetBuilder()
	defer pool.PutBuilder(b)

	inputNames := buildStrings(b, req.InputNames, graphpipefb.InferRequestStartInputNamesVector)
	outputNames := buildStrings(b, req.OutputNames, graphpipefb.InferRequestStartOutputNamesVector)
	inputs := buildTensors(b, req.Inputs, graphpipefb.InferRequestStartInputTensorsVector)

	var config flatbuffers.UOffsetT
	if req.Config != "" {
		config = b.CreateString(req.Config)
	}

	graphpipefb.InferRequestStart(b)
	graphpipefb.InferRequestAddInputNames(b, inputNames)
	graphpipefb.InferRequestAddOutputNames(b, outputNames)
	graphpipefb.InferRequestAddInputTensors(b, inputs)
	if config != 0 {
		graphpipefb.InferRequestAddConfig(b, config)
	}
	infer := graphpipefb.InferRequestEnd(b)

	graphpipefb.RequestStart(b)
	graphpipefb.RequestAddReqType(b, graphpipefb.ReqInferRequest)
	graphpipefb.RequestAddReq(b, infer)
	graphpipefb.FinishRequestBuffer(b, graphpipefb.RequestEnd(b))

	return slices.Clone(b.FinishedBytes())
}

// BuildResponse encodes resp as a finished InferResponse buffer.
func BuildResponse(resp *Response) []byte {
	b := pool.GetBuilder()
	defer pool.PutBuilder(b)

	outputs := buildTensors(b, resp.Outputs, graphpipefb.InferResponseStartOutputTensorsVector)

	var errVec flatbuffers.UOffsetT
	if len(resp.Errors) > 0 {
		offs, cleanup := offsetPool.Get(len(resp.Errors))
		defer cleanup()

		for i, e := range resp.Errors {
			msg := b.CreateString(e.Message)
			graphpipefb.ErrorStart(b)
			graphpipefb.ErrorAddCode(b, e.Code)
			graphpipefb.ErrorAddMessage(b, msg)
			offs[i] = graphpipefb.ErrorEnd(b)
		}
		errVec = offsetVector(b, offs, graphpipefb.InferResponseStartErrorsVector)
	}

	graphpipefb.InferResponseStart(b)
	graphpipefb.InferResponseAddOutputTensors(b, outputs)
	if errVec != 0 {
		graphpipefb.InferResponseAddErrors(b, errVec)
	}
	graphpipefb.FinishInferResponseBuffer(b, graphpipefb.InferResponseEnd(b))

	return slices.Clone(b.FinishedBytes())
}

type startVectorFunc func(*flatbuffers.Builder, int) flatbuffers.UOffsetT

func buildStrings(b *flatbuffers.Builder, strs []string, start startVectorFunc) flatbuffers.UOffsetT {
	offs, cleanup := offsetPool.Get(len(strs))
	defer cleanup()

	for i, s := range strs {
		offs[i] = b.CreateString(s)
	}

	return offsetVector(b, offs, start)
}

func buildTensors(b *flatbuffers.Builder, ts []tensor.Tensor, start startVectorFunc) flatbuffers.UOffsetT {
	offs, cleanup := offsetPool.Get(len(ts))
	defer cleanup()

	for i, t := range ts {
		offs[i] = buildTensor(b, t)
	}

	return offsetVector(b, offs, start)
}

// buildTensor writes the shape vector, then the payload, then the Tensor table.
func buildTensor(b *flatbuffers.Builder, t tensor.Tensor) flatbuffers.UOffsetT {
	shape := t.Shape()
	graphpipefb.TensorStartShapeVector(b, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		b.PrependInt64(shape[i])
	}
	shapeVec := b.EndVector(len(shape))

	var payload flatbuffers.UOffsetT
	if t.IsString() {
		payload = buildStrings(b, t.Strings(), graphpipefb.TensorStartStringValVector)
	} else {
		payload = b.CreateByteVector(t.Data())
	}

	graphpipefb.TensorStart(b)
	graphpipefb.TensorAddType(b, graphpipefb.Type(t.Type()))
	graphpipefb.TensorAddShape(b, shapeVec)
	if t.IsString() {
		graphpipefb.TensorAddStringVal(b, payload)
	} else {
		graphpipefb.TensorAddData(b, payload)
	}

	return graphpipefb.TensorEnd(b)
}

func offsetVector(b *flatbuffers.Builder, offs []flatbuffers.UOffsetT, start startVectorFunc) flatbuffers.UOffsetT {
	start(b, len(offs))
	for i := len(offs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offs[i])
	}

	return b.EndVector(len(offs))
}
