package encoding

import (
	"fmt"
	"math"
	"reflect"
	"unsafe"

	"github.com/monktastic/graphpipe-go/endian"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
)

// Element is the set of Go types with a fixed-width wire encoding.
type Element interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

// Converter packs and unpacks the elements of one wire type.
//
// Implementations are immutable and safe for concurrent use.
type Converter interface {
	// Type returns the wire type tag.
	Type() format.Type

	// Width returns the encoded size of one element in bytes, or 0 for strings.
	Width() int

	// GoType returns the Go element type, e.g. int16 for TypeInt16.
	GoType() reflect.Type

	// Pack writes src, which must be a slice of GoType, into the beginning of dst and
	// returns the number of bytes written. dst must hold len(src)*Width() bytes.
	Pack(dst []byte, src any) (int, error)

	// Unpack decodes count elements from the beginning of src into a newly allocated
	// slice of GoType, returned as any.
	Unpack(src []byte, count int) (any, error)
}

// numericConverter is the Converter for one Element type.
type numericConverter[T Element] struct {
	typ   format.Type
	width int
	put   func(b []byte, v T)
	get   func(b []byte) T
}

var _ Converter = (*numericConverter[int16])(nil)

func newNumericConverter[T Element](typ format.Type, put func([]byte, T), get func([]byte) T) *numericConverter[T] {
	var zero T

	return &numericConverter[T]{
		typ:   typ,
		width: int(unsafe.Sizeof(zero)),
		put:   put,
		get:   get,
	}
}

func (c *numericConverter[T]) Type() format.Type    { return c.typ }
func (c *numericConverter[T]) Width() int           { return c.width }
func (c *numericConverter[T]) GoType() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func (c *numericConverter[T]) Pack(dst []byte, src any) (int, error) {
	values, ok := src.([]T)
	if !ok {
		return 0, fmt.Errorf("%w: %s converter cannot pack %T", errs.ErrUnsupportedElementType, c.typ, src)
	}

	return c.pack(dst, values)
}

func (c *numericConverter[T]) Unpack(src []byte, count int) (any, error) {
	return c.unpack(src, count)
}

// pack is the typed form of Pack.
func (c *numericConverter[T]) pack(dst []byte, values []T) (int, error) {
	n := len(values) * c.width
	if len(dst) < n {
		return 0, fmt.Errorf("%w: %s destination holds %d bytes, need %d",
			errs.ErrShapeMismatch, c.typ, len(dst), n)
	}

	if endian.NativeIsWire() {
		copy(dst, bytesOf(values))
		return n, nil
	}

	c.packEach(dst, values)

	return n, nil
}

// packEach encodes values one element at a time through the wire engine.
func (c *numericConverter[T]) packEach(dst []byte, values []T) {
	for i, v := range values {
		off := i * c.width
		c.put(dst[off:off+c.width], v)
	}
}

// unpack is the typed form of Unpack.
func (c *numericConverter[T]) unpack(src []byte, count int) ([]T, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative element count %d", errs.ErrShapeMismatch, count)
	}

	n := count * c.width
	if len(src) < n {
		return nil, fmt.Errorf("%w: %s source holds %d bytes, need %d for %d elements",
			errs.ErrShapeMismatch, c.typ, len(src), n, count)
	}

	values := make([]T, count)
	if endian.NativeIsWire() {
		copy(bytesOf(values), src[:n])
		return values, nil
	}

	c.unpackEach(values, src)

	return values, nil
}

func (c *numericConverter[T]) unpackEach(values []T, src []byte) {
	for i := range values {
		off := i * c.width
		values[i] = c.get(src[off : off+c.width])
	}
}

// bytesOf returns the in-memory bytes of s without copying.
func bytesOf[T Element](s []T) []byte {
	if len(s) == 0 {
		return nil
	}

	var zero T

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

// stringConverter registers TypeString. String payloads are not byte buffers.
type stringConverter struct{}

var _ Converter = stringConverter{}

func (stringConverter) Type() format.Type    { return format.TypeString }
func (stringConverter) Width() int           { return 0 }
func (stringConverter) GoType() reflect.Type { return reflect.TypeOf((*string)(nil)).Elem() }

func (stringConverter) Pack([]byte, any) (int, error) {
	return 0, fmt.Errorf("%w: string elements have no fixed-width encoding", errs.ErrUnsupportedConversion)
}

func (stringConverter) Unpack([]byte, int) (any, error) {
	return nil, fmt.Errorf("%w: string elements have no fixed-width encoding", errs.ErrUnsupportedConversion)
}

// builtinConverters is the fixed converter list every Registry is built from.
func builtinConverters() []Converter {
	wire := endian.WireEngine()

	return []Converter{
		newNumericConverter(format.TypeInt8,
			func(b []byte, v int8) { b[0] = byte(v) },
			func(b []byte) int8 { return int8(b[0]) }),
		newNumericConverter(format.TypeInt16,
			func(b []byte, v int16) { wire.PutUint16(b, uint16(v)) },
			func(b []byte) int16 { return int16(wire.Uint16(b)) }),
		newNumericConverter(format.TypeInt32,
			func(b []byte, v int32) { wire.PutUint32(b, uint32(v)) },
			func(b []byte) int32 { return int32(wire.Uint32(b)) }),
		newNumericConverter(format.TypeInt64,
			func(b []byte, v int64) { wire.PutUint64(b, uint64(v)) },
			func(b []byte) int64 { return int64(wire.Uint64(b)) }),
		newNumericConverter(format.TypeFloat32,
			func(b []byte, v float32) { wire.PutUint32(b, math.Float32bits(v)) },
			func(b []byte) float32 { return math.Float32frombits(wire.Uint32(b)) }),
		newNumericConverter(format.TypeFloat64,
			func(b []byte, v float64) { wire.PutUint64(b, math.Float64bits(v)) },
			func(b []byte) float64 { return math.Float64frombits(wire.Uint64(b)) }),
		stringConverter{},
	}
}

// TypeFor returns the wire type tag of T.
func TypeFor[T Element]() format.Type {
	var zero T

	switch any(zero).(type) {
	case int8:
		return format.TypeInt8
	case int16:
		return format.TypeInt16
	case int32:
		return format.TypeInt32
	case int64:
		return format.TypeInt64
	case float32:
		return format.TypeFloat32
	default:
		return format.TypeFloat64
	}
}

// PackSlice packs src into dst using r's converter for T and returns the bytes written.
func PackSlice[T Element](r *Registry, dst []byte, src []T) (int, error) {
	c, err := typed[T](r)
	if err != nil {
		return 0, err
	}

	return c.pack(dst, src)
}

// UnpackSlice decodes count elements of T from src using r's converter for T.
func UnpackSlice[T Element](r *Registry, src []byte, count int) ([]T, error) {
	c, err := typed[T](r)
	if err != nil {
		return nil, err
	}

	return c.unpack(src, count)
}

func typed[T Element](r *Registry) (*numericConverter[T], error) {
	conv, err := r.ByType(TypeFor[T]())
	if err != nil {
		return nil, err
	}

	c, ok := conv.(*numericConverter[T])
	if !ok {
		return nil, fmt.Errorf("%w: registry converter for %s is %T", errs.ErrKindNotSupported, conv.Type(), conv)
	}

	return c, nil
}
