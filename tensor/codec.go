package tensor

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/monktastic/graphpipe-go/encoding"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
)

// Codec converts between Go arrays and Tensors using the converters of one registry.
//
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	reg *encoding.Registry
}

// NewCodec returns a codec over reg. A nil reg selects encoding.Default().
func NewCodec(reg *encoding.Registry) *Codec {
	if reg == nil {
		reg = encoding.Default()
	}

	return &Codec{reg: reg}
}

var defaultCodec = sync.OnceValue(func() *Codec { return NewCodec(nil) })

// Default returns the codec over encoding.Default().
func Default() *Codec { return defaultCodec() }

// Registry returns the registry the codec resolves element types with.
func (c *Codec) Registry() *encoding.Registry { return c.reg }

// New wraps a numeric payload using c's registry. See the package-level New.
func (c *Codec) New(typ format.Type, shape Shape, data []byte) (Tensor, error) {
	return newTensor(c.reg, typ, shape, data)
}

// FromNested encodes a nested Go array using the default codec.
func FromNested(v any) (Tensor, error) { return defaultCodec().FromNested(v) }

// FromFlat encodes a one-dimensional Go slice under an explicit shape using the default codec.
func FromFlat(flat any, shape Shape) (Tensor, error) { return defaultCodec().FromFlat(flat, shape) }

// ToNested decodes t into nested Go slices using the default codec.
func ToNested(t Tensor) (any, error) { return defaultCodec().ToNested(t) }

// ToFlat decodes t into a flat Go slice using the default codec.
func ToFlat(t Tensor) (any, error) { return defaultCodec().ToFlat(t) }

// FromNested encodes v, a rectangular nested array of a supported element type, into a
// Tensor whose shape and type are inferred by InferShape.
//
// Numeric payloads are packed one innermost array at a time in row-major order.
func (c *Codec) FromNested(v any) (Tensor, error) {
	shape, conv, err := c.inferShape(v)
	if err != nil {
		return Tensor{}, err
	}

	count, err := shape.ElementCount()
	if err != nil {
		return Tensor{}, err
	}

	rv := unwrap(reflect.ValueOf(v))

	if conv.Width() == 0 {
		strs := make([]string, 0, count)
		collectStrings(rv, &strs)

		return NewStrings(shape, strs)
	}

	p := &packer{conv: conv, data: make([]byte, count*conv.Width())}
	if err := p.fill(rv, len(shape)-1); err != nil {
		return Tensor{}, err
	}

	return Tensor{typ: conv.Type(), shape: shape, data: p.data}, nil
}

// FromFlat encodes flat, a one-dimensional slice or array, and reshapes it to shape.
// The only check against the shape is that its element count equals len(flat).
func (c *Codec) FromFlat(flat any, shape Shape) (Tensor, error) {
	rv := unwrap(reflect.ValueOf(flat))
	if !isArray(rv) {
		return Tensor{}, fmt.Errorf("%w: got %T", errs.ErrNotAnArray, flat)
	}

	count, err := shape.ElementCount()
	if err != nil {
		return Tensor{}, err
	}

	if rv.Len() != count {
		return Tensor{}, fmt.Errorf("%w: shape %v needs %d elements, got %d",
			errs.ErrShapeMismatch, shape, count, rv.Len())
	}

	conv, err := c.flatConverter(rv)
	if err != nil {
		return Tensor{}, err
	}

	if err := verify(rv, Shape{int64(count)}, 0, conv.GoType()); err != nil {
		return Tensor{}, err
	}

	if conv.Width() == 0 {
		strs := make([]string, 0, count)
		collectStrings(rv, &strs)

		return NewStrings(shape, strs)
	}

	p := &packer{conv: conv, data: make([]byte, count*conv.Width())}
	if err := p.packInner(rv); err != nil {
		return Tensor{}, err
	}

	return Tensor{typ: conv.Type(), shape: shape.Clone(), data: p.data}, nil
}

// flatConverter resolves the element converter of a one-dimensional array, using its
// static element type when that is concrete so that empty inputs still have a type.
func (c *Codec) flatConverter(rv reflect.Value) (encoding.Converter, error) {
	if elem := rv.Type().Elem(); elem.Kind() != reflect.Interface {
		return c.leafConverter(elem)
	}

	if rv.Len() == 0 {
		return nil, fmt.Errorf("%w: cannot determine the element type of an empty %v", errs.ErrEmptyArray, rv.Type())
	}

	leaf := unwrap(rv.Index(0))
	if !leaf.IsValid() {
		return nil, fmt.Errorf("%w: nil leaf", errs.ErrUnsupportedElementType)
	}

	return c.leafConverter(leaf.Type())
}

// FromSlice encodes data under shape. The element count of shape must equal len(data).
func FromSlice[T encoding.Element](data []T, shape Shape) (Tensor, error) {
	return FromSliceWith(defaultCodec(), data, shape)
}

// FromSliceWith is FromSlice using the registry of c.
func FromSliceWith[T encoding.Element](c *Codec, data []T, shape Shape) (Tensor, error) {
	count, err := shape.ElementCount()
	if err != nil {
		return Tensor{}, err
	}

	if len(data) != count {
		return Tensor{}, fmt.Errorf("%w: shape %v needs %d elements, got %d",
			errs.ErrShapeMismatch, shape, count, len(data))
	}

	var zero T
	buf := make([]byte, len(data)*int(reflect.TypeOf(zero).Size()))
	if _, err := encoding.PackSlice(c.reg, buf, data); err != nil {
		return Tensor{}, err
	}

	return Tensor{typ: encoding.TypeFor[T](), shape: shape.Clone(), data: buf}, nil
}

// ToNested decodes t into nested slices of its element type, e.g. [][]float64 for a
// rank-2 Float64 tensor. A rank-0 tensor decodes to its single scalar.
func (c *Codec) ToNested(t Tensor) (any, error) {
	conv, err := c.reg.ByType(t.typ)
	if err != nil {
		return nil, err
	}

	if len(t.shape) == 0 {
		flat, err := c.ToFlat(t)
		if err != nil {
			return nil, err
		}

		fv := reflect.ValueOf(flat)
		if fv.Len() != 1 {
			return nil, fmt.Errorf("%w: scalar tensor holds %d elements", errs.ErrShapeMismatch, fv.Len())
		}

		return fv.Index(0).Interface(), nil
	}

	u := &unpacker{conv: conv, t: t, strides: strides(t.shape)}
	out, err := u.build(0, 0)
	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// ToFlat decodes t into a one-dimensional slice of its element type in row-major order.
func (c *Codec) ToFlat(t Tensor) (any, error) {
	conv, err := c.reg.ByType(t.typ)
	if err != nil {
		return nil, err
	}

	if conv.Width() == 0 {
		return slices.Clone(t.strings), nil
	}

	return conv.Unpack(t.data, t.ElementCount())
}

// Values returns the elements of t as a flat []T. The tensor type must match T.
func Values[T encoding.Element](t Tensor) ([]T, error) {
	return ValuesWith[T](defaultCodec(), t)
}

// ValuesWith is Values using the registry of c.
func ValuesWith[T encoding.Element](c *Codec, t Tensor) ([]T, error) {
	if want := encoding.TypeFor[T](); t.typ != want {
		return nil, fmt.Errorf("%w: %s tensor read as %s", errs.ErrUnsupportedConversion, t.typ, want)
	}

	return encoding.UnpackSlice[T](c.reg, t.data, t.ElementCount())
}

// packer writes innermost arrays into data in row-major order.
type packer struct {
	conv encoding.Converter
	data []byte
	off  int
}

func (p *packer) fill(rv reflect.Value, inner int) error {
	if inner == 0 {
		return p.packInner(rv)
	}

	for i := 0; i < rv.Len(); i++ {
		if err := p.fill(unwrap(rv.Index(i)), inner-1); err != nil {
			return err
		}
	}

	return nil
}

// packInner packs one innermost array with a single Pack call. Slices already typed as
// the element slice are passed through; arrays and []any are gathered first.
func (p *packer) packInner(rv reflect.Value) error {
	sliceType := reflect.SliceOf(p.conv.GoType())

	var src any
	if rv.Type() == sliceType {
		src = rv.Interface()
	} else {
		n := rv.Len()
		gathered := reflect.MakeSlice(sliceType, n, n)
		for i := 0; i < n; i++ {
			gathered.Index(i).Set(unwrap(rv.Index(i)))
		}
		src = gathered.Interface()
	}

	n, err := p.conv.Pack(p.data[p.off:], src)
	if err != nil {
		return err
	}
	p.off += n

	return nil
}

// collectStrings appends the string leaves of rv to acc in row-major order.
func collectStrings(rv reflect.Value, acc *[]string) {
	if !isArray(rv) {
		*acc = append(*acc, rv.String())
		return
	}

	if ss, ok := rv.Interface().([]string); ok {
		*acc = append(*acc, ss...)
		return
	}

	for i := 0; i < rv.Len(); i++ {
		collectStrings(unwrap(rv.Index(i)), acc)
	}
}

// unpacker rebuilds nested slices from a tensor payload.
type unpacker struct {
	conv    encoding.Converter
	t       Tensor
	strides []int
}

// build returns the nested slice for dimension dim starting at element offset off.
func (u *unpacker) build(dim int, off int) (reflect.Value, error) {
	shape := u.t.shape
	n := int(shape[dim])

	if dim == len(shape)-1 {
		if u.conv.Width() == 0 {
			return reflect.ValueOf(slices.Clone(u.t.strings[off : off+n])), nil
		}

		width := u.conv.Width()
		vals, err := u.conv.Unpack(u.t.data[off*width:], n)
		if err != nil {
			return reflect.Value{}, err
		}

		return reflect.ValueOf(vals), nil
	}

	out := reflect.MakeSlice(nestedType(u.conv.GoType(), len(shape)-dim), n, n)
	for i := 0; i < n; i++ {
		child, err := u.build(dim+1, off+i*u.strides[dim])
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(child)
	}

	return out, nil
}

// nestedType returns elem wrapped in rank slice levels.
func nestedType(elem reflect.Type, rank int) reflect.Type {
	for _i := 0; _i < rank; _i++ {
		elem = reflect.SliceOf(elem)
	}

	return elem
}

// strides returns, for every dimension, the number of elements one step along it spans.
func strides(shape Shape) []int {
	out := make([]int, len(shape))
	step := 1
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = step
		step *= int(shape[i])
	}

	return out
}
