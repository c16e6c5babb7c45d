package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monktastic/graphpipe-go/errs"
)

func TestShape_ElementCount(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		count int
	}{
		{"scalar", Shape{}, 1},
		{"nil", nil, 1},
		{"vector", Shape{5}, 5},
		{"rank3", Shape{2, 3, 4}, 24},
		{"zero dim", Shape{3, 0, 7}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.shape.ElementCount()
			require.NoError(t, err)
			require.Equal(t, tt.count, n)
		})
	}
}

func TestShape_ElementCountErrors(t *testing.T) {
	_, err := Shape{2, -1}.ElementCount()
	require.ErrorIs(t, err, errs.ErrShapeMismatch)

	_, err = Shape{math.MaxInt64, 4}.ElementCount()
	require.ErrorIs(t, err, errs.ErrShapeMismatch)
}

func TestShape_CloneEqualString(t *testing.T) {
	require := require.New(t)

	s := Shape{2, 2, 2}
	c := s.Clone()
	require.True(s.Equal(c))

	c[0] = 9
	require.Equal(int64(2), s[0])
	require.False(s.Equal(c))
	require.False(s.Equal(Shape{2, 2}))
	require.True(Shape(nil).Equal(Shape{}))
	require.Nil(Shape(nil).Clone())

	require.Equal("[2,2,2]", s.String())
	require.Equal("[]", Shape{}.String())
}

func TestParseShape(t *testing.T) {
	require := require.New(t)

	s, err := ParseShape("2,3, 4")
	require.NoError(err)
	require.Equal(Shape{2, 3, 4}, s)

	s, err = ParseShape(Shape{1, 384}.String())
	require.NoError(err)
	require.Equal(Shape{1, 384}, s)

	s, err = ParseShape("")
	require.NoError(err)
	require.Empty(s)

	for _, bad := range []string{"1,,2", "a", "-1", "1,2x"} {
		_, err = ParseShape(bad)
		require.ErrorIs(err, errs.ErrShapeMismatch, bad)
	}
}
