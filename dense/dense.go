// Package dense adapts gonum matrices and raw dense buffers to GraphPipe tensors.
//
// The core tensor codec has no dependency on this package. Conversions go through the
// tensor.Tensor value only: FromDense and FromVecDense produce Float64 tensors, ToDense
// and ToVecDense accept Float32 or Float64 tensors of rank 1 or 2.
//
// On little-endian hosts FromDense shares the contiguous backing store of the matrix
// with the returned tensor; the matrix must not be modified while the tensor is in use.
package dense

import (
	"fmt"
	"unsafe"

	"gonum.org/v1/gonum/mat"

	"github.com/monktastic/graphpipe-go/encoding"
	"github.com/monktastic/graphpipe-go/endian"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
	"github.com/monktastic/graphpipe-go/tensor"
)

// Wrap views buf, a little-endian buffer of elements of width bytes each, as a tensor of
// the given shape. The element type is chosen by width, preferring floating-point kinds
// (4 bytes is Float32, 8 bytes is Float64). buf is not copied.
func Wrap(buf []byte, width int, shape tensor.Shape) (tensor.Tensor, error) {
	return WrapWith(encoding.Default(), buf, width, shape)
}

// WrapWith is Wrap resolving the element width through reg.
func WrapWith(reg *encoding.Registry, buf []byte, width int, shape tensor.Shape) (tensor.Tensor, error) {
	conv, err := reg.ByWidth(width)
	if err != nil {
		return tensor.Tensor{}, err
	}

	return tensor.NewCodec(reg).New(conv.Type(), shape, buf)
}

// FromDense converts m to a rank-2 Float64 tensor of shape [rows, cols].
func FromDense(m *mat.Dense) (tensor.Tensor, error) {
	if m == nil || m.IsEmpty() {
		return tensor.Tensor{}, fmt.Errorf("%w: empty matrix", errs.ErrEmptyArray)
	}

	raw := m.RawMatrix()
	shape := tensor.Shape{int64(raw.Rows), int64(raw.Cols)}

	if raw.Stride == raw.Cols {
		return fromFloat64s(raw.Data[:raw.Rows*raw.Cols], shape)
	}

	// Strided sub-view: gather row by row.
	vals := make([]float64, 0, raw.Rows*raw.Cols)
	for i := 0; i < raw.Rows; i++ {
		vals = append(vals, raw.Data[i*raw.Stride:i*raw.Stride+raw.Cols]...)
	}

	return tensor.FromSlice(vals, shape)
}

// FromVecDense converts v to a rank-1 Float64 tensor.
func FromVecDense(v *mat.VecDense) (tensor.Tensor, error) {
	if v == nil || v.IsEmpty() {
		return tensor.Tensor{}, fmt.Errorf("%w: empty vector", errs.ErrEmptyArray)
	}

	raw := v.RawVector()
	shape := tensor.Shape{int64(raw.N)}

	if raw.Inc == 1 {
		return fromFloat64s(raw.Data[:raw.N], shape)
	}

	vals := make([]float64, raw.N)
	for i := range vals {
		vals[i] = raw.Data[i*raw.Inc]
	}

	return tensor.FromSlice(vals, shape)
}

// fromFloat64s shares vals with the tensor when the host byte order is the wire order.
func fromFloat64s(vals []float64, shape tensor.Shape) (tensor.Tensor, error) {
	if !endian.NativeIsWire() {
		return tensor.FromSlice(vals, shape)
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(vals))), len(vals)*8)

	return tensor.New(format.TypeFloat64, shape, buf)
}

// ToDense converts a Float32 or Float64 tensor to a new matrix. A rank-1 tensor of
// length n becomes a 1×n matrix; a rank-2 tensor [r, c] becomes an r×c matrix.
func ToDense(t tensor.Tensor) (*mat.Dense, error) {
	rows, cols, err := matrixDims(t)
	if err != nil {
		return nil, err
	}

	vals, err := float64s(t)
	if err != nil {
		return nil, err
	}

	return mat.NewDense(rows, cols, vals), nil
}

// ToVecDense converts a rank-1 Float32 or Float64 tensor to a new vector.
func ToVecDense(t tensor.Tensor) (*mat.VecDense, error) {
	if err := checkFloat(t); err != nil {
		return nil, err
	}

	if t.Rank() != 1 {
		return nil, fmt.Errorf("%w: vector needs a rank-1 tensor, got rank %d", errs.ErrUnsupportedConversion, t.Rank())
	}

	if t.ElementCount() == 0 {
		return nil, fmt.Errorf("%w: tensor %s has no elements", errs.ErrEmptyArray, t)
	}

	vals, err := float64s(t)
	if err != nil {
		return nil, err
	}

	return mat.NewVecDense(len(vals), vals), nil
}

func matrixDims(t tensor.Tensor) (int, int, error) {
	if err := checkFloat(t); err != nil {
		return 0, 0, err
	}

	shape := t.Shape()

	var rows, cols int
	switch len(shape) {
	case 1:
		rows, cols = 1, int(shape[0])
	case 2:
		rows, cols = int(shape[0]), int(shape[1])
	default:
		return 0, 0, fmt.Errorf("%w: matrix needs a rank-1 or rank-2 tensor, got rank %d",
			errs.ErrUnsupportedConversion, len(shape))
	}

	if rows == 0 || cols == 0 {
		return 0, 0, fmt.Errorf("%w: tensor %s has no elements", errs.ErrEmptyArray, t)
	}

	return rows, cols, nil
}

func checkFloat(t tensor.Tensor) error {
	switch t.Type() {
	case format.TypeFloat32, format.TypeFloat64:
		return nil
	default:
		return fmt.Errorf("%w: %s tensor has no dense float view", errs.ErrUnsupportedConversion, t.Type())
	}
}

// float64s unpacks t into a new []float64, widening Float32 elements.
func float64s(t tensor.Tensor) ([]float64, error) {
	if t.Type() == format.TypeFloat64 {
		return tensor.Values[float64](t)
	}

	narrow, err := tensor.Values[float32](t)
	if err != nil {
		return nil, err
	}

	wide := make([]float64, len(narrow))
	for i, v := range narrow {
		wide[i] = float64(v)
	}

	return wide, nil
}
