package tensor

import (
	"fmt"
	"reflect"

	"github.com/monktastic/graphpipe-go/encoding"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
)

// InferShape returns the shape and element type of a nested Go array using the default
// registry. See Codec.InferShape.
func InferShape(v any) (Shape, format.Type, error) {
	return defaultCodec().InferShape(v)
}

// InferShape returns the shape and element type of v, which must be a slice or array,
// possibly nested through further slices, arrays or []any values.
//
// The shape is read by following the first child at every depth, and the element type
// is that of the first leaf. Every sibling is then checked against the recorded shape.
func (c *Codec) InferShape(v any) (Shape, format.Type, error) {
	shape, conv, err := c.inferShape(v)
	if err != nil {
		return nil, format.TypeNull, err
	}

	return shape, conv.Type(), nil
}

func (c *Codec) inferShape(v any) (Shape, encoding.Converter, error) {
	rv := unwrap(reflect.ValueOf(v))
	if !isArray(rv) {
		return nil, nil, fmt.Errorf("%w: got %T", errs.ErrNotAnArray, v)
	}

	shape, leaf, err := descend(rv)
	if err != nil {
		return nil, nil, err
	}

	conv, err := c.leafConverter(leaf.Type())
	if err != nil {
		return nil, nil, err
	}

	if err := verify(rv, shape, 0, conv.GoType()); err != nil {
		return nil, nil, err
	}

	return shape, conv, nil
}

// descend records the length of the first child at every depth and returns the first leaf.
func descend(rv reflect.Value) (Shape, reflect.Value, error) {
	var shape Shape
	for isArray(rv) {
		n := rv.Len()
		if n == 0 {
			return nil, reflect.Value{}, fmt.Errorf("%w: dimension %d has length 0", errs.ErrEmptyArray, len(shape))
		}

		shape = append(shape, int64(n))
		rv = unwrap(rv.Index(0))
	}

	if !rv.IsValid() {
		return nil, reflect.Value{}, fmt.Errorf("%w: nil leaf", errs.ErrUnsupportedElementType)
	}

	return shape, rv, nil
}

// verify checks that every array at depth dim has length shape[dim] and every leaf has
// Go type leaf.
func verify(rv reflect.Value, shape Shape, dim int, leaf reflect.Type) error {
	if dim == len(shape) {
		if isArray(rv) {
			return fmt.Errorf("%w: dimension %d declared as scalar, got array of length %d",
				errs.ErrRaggedArray, dim, rv.Len())
		}
		if !rv.IsValid() || rv.Type() != leaf {
			return fmt.Errorf("%w: mixed leaf types, %v and %v", errs.ErrUnsupportedElementType, leaf, typeOf(rv))
		}

		return nil
	}

	if !isArray(rv) {
		return fmt.Errorf("%w: dimension %d declared %d, got scalar", errs.ErrRaggedArray, dim, shape[dim])
	}

	if n := rv.Len(); int64(n) != shape[dim] {
		return fmt.Errorf("%w: dimension %d declared %d, got %d", errs.ErrRaggedArray, dim, shape[dim], n)
	}

	// A statically typed innermost array such as []int16 needs no per-element check.
	if dim == len(shape)-1 && rv.Type().Elem() == leaf {
		return nil
	}

	for i := 0; i < rv.Len(); i++ {
		if err := verify(unwrap(rv.Index(i)), shape, dim+1, leaf); err != nil {
			return err
		}
	}

	return nil
}

func (c *Codec) leafConverter(rt reflect.Type) (encoding.Converter, error) {
	conv, err := c.reg.ByGoType(rt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnsupportedElementType, rt)
	}

	return conv, nil
}

func isArray(rv reflect.Value) bool {
	if !rv.IsValid() {
		return false
	}

	k := rv.Kind()

	return k == reflect.Slice || k == reflect.Array
}

// unwrap strips interface boxing, as found in []any nesting.
func unwrap(rv reflect.Value) reflect.Value {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}

	return rv
}

func typeOf(rv reflect.Value) any {
	if !rv.IsValid() {
		return "nil"
	}

	return rv.Type()
}
