package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeTagsAreStable(t *testing.T) {
	require := require.New(t)

	// Tags are part of the wire format and must never move.
	require.Equal(Type(2), TypeInt8)
	require.Equal(Type(4), TypeInt16)
	require.Equal(Type(6), TypeInt32)
	require.Equal(Type(8), TypeInt64)
	require.Equal(Type(10), TypeFloat32)
	require.Equal(Type(11), TypeFloat64)
	require.Equal(Type(12), TypeString)
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeNull, "Null"},
		{TypeInt8, "Int8"},
		{TypeInt16, "Int16"},
		{TypeFloat16, "Float16"},
		{TypeFloat64, "Float64"},
		{TypeString, "String"},
		{Type(200), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeIsFloat(t *testing.T) {
	require.True(t, TypeFloat32.IsFloat())
	require.True(t, TypeFloat64.IsFloat())
	require.False(t, TypeInt64.IsFloat())
	require.False(t, TypeString.IsFloat())
}

func TestContentEncodingRoundTrip(t *testing.T) {
	for _, c := range []CompressionType{CompressionZstd, CompressionS2, CompressionLZ4} {
		token := c.ContentEncoding()
		require.NotEmpty(t, token, c.String())

		got, ok := ParseContentEncoding(token)
		require.True(t, ok)
		require.Equal(t, c, got)
	}

	require.Empty(t, CompressionNone.ContentEncoding())

	got, ok := ParseContentEncoding("identity")
	require.True(t, ok)
	require.Equal(t, CompressionNone, got)

	_, ok = ParseContentEncoding("br")
	require.False(t, ok)
}
