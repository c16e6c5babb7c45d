package tensor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/monktastic/graphpipe-go/errs"
)

// Shape lists tensor dimensions from outermost to innermost.
type Shape []int64

// Rank returns the number of dimensions.
func (s Shape) Rank() int { return len(s) }

// ElementCount returns the product of the dimensions, 1 for a rank-0 shape.
//
// It fails with errs.ErrShapeMismatch on negative dimensions or when the product
// overflows int.
func (s Shape) ElementCount() (int, error) {
	count := 1
	for i, dim := range s {
		if dim < 0 {
			return 0, fmt.Errorf("%w: dimension %d is negative (%d)", errs.ErrShapeMismatch, i, dim)
		}

		if dim == 0 {
			count = 0
			continue
		}

		if count == 0 {
			continue
		}

		if dim > math.MaxInt || count > math.MaxInt/int(dim) {
			return 0, fmt.Errorf("%w: shape %v overflows the element count", errs.ErrShapeMismatch, s)
		}

		count *= int(dim)
	}

	return count, nil
}

// Clone returns a copy of s.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}

	out := make(Shape, len(s))
	copy(out, s)

	return out
}

// Equal reports whether s and o have the same dimensions. A nil shape equals an empty one.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}

	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}

	return true
}

// String formats s as a comma-separated list, the form ParseShape accepts.
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, dim := range s {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(dim, 10))
	}
	sb.WriteByte(']')

	return sb.String()
}

// ParseShape parses a comma-separated shape such as "2,2,2". Surrounding brackets are
// accepted, so the output of Shape.String parses back.
func ParseShape(raw string) (Shape, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if strings.TrimSpace(raw) == "" {
		return Shape{}, nil
	}

	parts := strings.Split(raw, ",")
	shape := make(Shape, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty dimension in %q", errs.ErrShapeMismatch, raw)
		}

		dim, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: dimension %q: %w", errs.ErrShapeMismatch, part, err)
		}
		if dim < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", errs.ErrShapeMismatch, dim)
		}

		shape = append(shape, dim)
	}

	return shape, nil
}
