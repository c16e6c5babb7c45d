package tensor

import (
	"bytes"
	"fmt"
	"math"
	"slices"

	"github.com/monktastic/graphpipe-go/encoding"
	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
	"github.com/monktastic/graphpipe-go/internal/hash"
)

// Tensor is an immutable n-dimensional array in wire form: a shape, an element type and
// either a little-endian byte payload (numeric types) or a flat string list (TypeString).
//
// The zero value is an invalid tensor with TypeNull. Tensors are values; copying one
// shares its payload, which must not be modified.
type Tensor struct {
	typ     format.Type
	shape   Shape
	data    []byte
	strings []string
}

// New wraps a numeric payload. data is owned by the returned tensor and is not copied.
//
// It fails when typ has no fixed-width converter in the default registry, or when
// len(data) differs from the shape's element count times the element width.
func New(typ format.Type, shape Shape, data []byte) (Tensor, error) {
	return newTensor(encoding.Default(), typ, shape, data)
}

func newTensor(reg *encoding.Registry, typ format.Type, shape Shape, data []byte) (Tensor, error) {
	conv, err := reg.ByType(typ)
	if err != nil {
		return Tensor{}, err
	}

	if conv.Width() == 0 {
		return Tensor{}, fmt.Errorf("%w: %s tensors carry strings, not bytes", errs.ErrUnsupportedConversion, typ)
	}

	count, err := shape.ElementCount()
	if err != nil {
		return Tensor{}, err
	}

	if count > math.MaxInt/conv.Width() {
		return Tensor{}, fmt.Errorf("%w: %s shape %v overflows the payload size", errs.ErrShapeMismatch, typ, shape)
	}

	if want := count * conv.Width(); len(data) != want {
		return Tensor{}, fmt.Errorf("%w: %s shape %v needs %d bytes, got %d",
			errs.ErrShapeMismatch, typ, shape, want, len(data))
	}

	return Tensor{typ: typ, shape: shape.Clone(), data: data}, nil
}

// NewStrings wraps a flat string payload in row-major order. strs is owned by the
// returned tensor and is not copied.
func NewStrings(shape Shape, strs []string) (Tensor, error) {
	count, err := shape.ElementCount()
	if err != nil {
		return Tensor{}, err
	}

	if len(strs) != count {
		return Tensor{}, fmt.Errorf("%w: shape %v needs %d strings, got %d",
			errs.ErrShapeMismatch, shape, count, len(strs))
	}

	return Tensor{typ: format.TypeString, shape: shape.Clone(), strings: strs}, nil
}

// Type returns the element type.
func (t Tensor) Type() format.Type { return t.typ }

// Shape returns a copy of the tensor's shape.
func (t Tensor) Shape() Shape { return t.shape.Clone() }

// Rank returns the number of dimensions.
func (t Tensor) Rank() int { return len(t.shape) }

// Data returns the little-endian payload of a numeric tensor, nil for string tensors.
// The slice is shared with the tensor.
func (t Tensor) Data() []byte { return t.data }

// Strings returns the row-major payload of a string tensor, nil for numeric tensors.
// The slice is shared with the tensor.
func (t Tensor) Strings() []string { return t.strings }

// IsString reports whether t holds strings.
func (t Tensor) IsString() bool { return t.typ == format.TypeString }

// ElementCount returns the number of elements.
func (t Tensor) ElementCount() int {
	if t.IsString() {
		return len(t.strings)
	}

	// Shape was validated at construction.
	n, _ := t.shape.ElementCount()

	return n
}

// Equal reports whether t and o have the same type, shape and payload.
func (t Tensor) Equal(o Tensor) bool {
	return t.typ == o.typ &&
		t.shape.Equal(o.shape) &&
		bytes.Equal(t.data, o.data) &&
		slices.Equal(t.strings, o.strings)
}

// Fingerprint returns an xxHash64 digest of the type, shape and payload. Equal tensors
// have equal fingerprints.
func (t Tensor) Fingerprint() uint64 {
	d := hash.New()
	d.Uint8(uint8(t.typ))
	d.Int64(int64(len(t.shape)))
	for _, dim := range t.shape {
		d.Int64(dim)
	}

	if t.IsString() {
		d.Int64(int64(len(t.strings)))
		for _, s := range t.strings {
			d.Text(s)
		}
	} else {
		d.Bytes(t.data)
	}

	return d.Sum64()
}

// String returns a short description such as "Float64[2,3]".
func (t Tensor) String() string {
	return t.typ.String() + t.shape.String()
}
