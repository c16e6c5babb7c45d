package encoding

import (
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
)

func TestRegistry_ByType(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		typ    format.Type
		width  int
		goType reflect.Type
	}{
		{format.TypeInt8, 1, reflect.TypeOf((*int8)(nil)).Elem()},
		{format.TypeInt16, 2, reflect.TypeOf((*int16)(nil)).Elem()},
		{format.TypeInt32, 4, reflect.TypeOf((*int32)(nil)).Elem()},
		{format.TypeInt64, 8, reflect.TypeOf((*int64)(nil)).Elem()},
		{format.TypeFloat32, 4, reflect.TypeOf((*float32)(nil)).Elem()},
		{format.TypeFloat64, 8, reflect.TypeOf((*float64)(nil)).Elem()},
		{format.TypeString, 0, reflect.TypeOf((*string)(nil)).Elem()},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			conv, err := reg.ByType(tt.typ)
			require.NoError(t, err)
			require.Equal(t, tt.typ, conv.Type())
			require.Equal(t, tt.width, conv.Width())
			require.Equal(t, tt.goType, conv.GoType())

			byGo, err := reg.ByGoType(tt.goType)
			require.NoError(t, err)
			require.Equal(t, tt.typ, byGo.Type())
		})
	}
}

func TestRegistry_UnsupportedTags(t *testing.T) {
	reg := NewRegistry()

	for _, typ := range []format.Type{
		format.TypeNull, format.TypeUint8, format.TypeUint16, format.TypeUint32,
		format.TypeUint64, format.TypeFloat16, format.Type(200),
	} {
		_, err := reg.ByType(typ)
		require.ErrorIs(t, err, errs.ErrKindNotSupported, "tag %d", typ)
	}
}

func TestRegistry_ByWidthPrefersFloat(t *testing.T) {
	require := require.New(t)
	reg := NewRegistry()

	conv, err := reg.ByWidth(4)
	require.NoError(err)
	require.Equal(format.TypeFloat32, conv.Type())

	conv, err = reg.ByWidth(8)
	require.NoError(err)
	require.Equal(format.TypeFloat64, conv.Type())

	conv, err = reg.ByWidth(1)
	require.NoError(err)
	require.Equal(format.TypeInt8, conv.Type())

	conv, err = reg.ByWidth(2)
	require.NoError(err)
	require.Equal(format.TypeInt16, conv.Type())

	for _, w := range []int{0, 3, 16, -1} {
		_, err = reg.ByWidth(w)
		require.ErrorIs(err, errs.ErrKindNotSupported, "width %d", w)
	}
}

func TestRegistry_ByGoTypeMiss(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.ByGoType(reflect.TypeOf((*uint32)(nil)).Elem())
	require.ErrorIs(t, err, errs.ErrKindNotSupported)

	_, err = reg.ByGoType(nil)
	require.ErrorIs(t, err, errs.ErrKindNotSupported)
}

func TestRegistry_Converters(t *testing.T) {
	reg := NewRegistry()

	convs := reg.Converters()
	require.Len(t, convs, 7)

	// Mutating the returned slice must not affect the registry.
	convs[0] = nil
	require.NotNil(t, reg.Converters()[0])
}

func TestDefault_Shared(t *testing.T) {
	var wg sync.WaitGroup

	got := make([]*Registry, 8)
	for i := range got {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i] = Default()
		}()
	}
	wg.Wait()

	for _, r := range got {
		require.Same(t, got[0], r)
	}
}
