// Package tensor converts rectangular Go arrays to and from GraphPipe tensors.
//
// A Tensor is an immutable value: a Shape, a wire element type and either a
// little-endian byte payload or, for TypeString, a flat list of strings in row-major
// order. Tensors are produced from nested arrays (FromNested), from a flat slice plus an
// explicit shape (FromFlat, FromSlice) or from a raw payload (New, NewStrings):
//
//	t, err := tensor.FromNested([][]float32{{1, 2}, {3, 4}})
//	// t.Type() == format.TypeFloat32, t.Shape() == tensor.Shape{2, 2}
//
//	back, err := tensor.ToNested(t) // [][]float32{{1, 2}, {3, 4}}
//
// Nested input may be any mix of Go slices, arrays and []any, as long as it is
// rectangular and every leaf has the same supported type. Shape inference follows the
// first child at each depth and then checks every sibling, failing with
// errs.ErrEmptyArray, errs.ErrRaggedArray or errs.ErrUnsupportedElementType.
//
// Element types are resolved through an encoding.Registry held by a Codec. The
// package-level functions use a codec over encoding.Default().
package tensor
