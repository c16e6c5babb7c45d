package encoding

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
)

// Registry maps wire tags, element widths and Go element types to Converters.
//
// A Registry is immutable once built and safe for concurrent use.
type Registry struct {
	all      []Converter
	byType   map[format.Type]Converter
	byWidth  map[int]Converter
	byGoType map[reflect.Type]Converter
}

// NewRegistry builds a registry over the built-in converters.
func NewRegistry() *Registry {
	return newRegistry(builtinConverters())
}

func newRegistry(convs []Converter) *Registry {
	r := &Registry{
		all:      convs,
		byType:   make(map[format.Type]Converter, len(convs)),
		byWidth:  make(map[int]Converter, 4),
		byGoType: make(map[reflect.Type]Converter, len(convs)),
	}

	for _, c := range convs {
		r.byType[c.Type()] = c
		r.byGoType[c.GoType()] = c

		w := c.Width()
		if w == 0 {
			continue
		}

		// Float kinds win width collisions.
		if prev, ok := r.byWidth[w]; !ok || (!prev.Type().IsFloat() && c.Type().IsFloat()) {
			r.byWidth[w] = c
		}
	}

	return r
}

var defaultRegistry = sync.OnceValue(NewRegistry)

// Default returns the process-wide registry, building it on first use.
func Default() *Registry {
	return defaultRegistry()
}

// ByType returns the converter for wire tag t.
func (r *Registry) ByType(t format.Type) (Converter, error) {
	if c, ok := r.byType[t]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: wire type %s (%d)", errs.ErrKindNotSupported, t, uint8(t))
}

// ByWidth returns the converter for elements of w bytes. Floating-point kinds are
// preferred when two kinds share a width.
func (r *Registry) ByWidth(w int) (Converter, error) {
	if c, ok := r.byWidth[w]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: element width %d", errs.ErrKindNotSupported, w)
}

// ByGoType returns the converter whose element type is rt.
func (r *Registry) ByGoType(rt reflect.Type) (Converter, error) {
	if rt != nil {
		if c, ok := r.byGoType[rt]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("%w: Go type %v", errs.ErrKindNotSupported, rt)
}

// Converters returns the registered converters in registration order.
func (r *Registry) Converters() []Converter {
	out := make([]Converter, len(r.all))
	copy(out, r.all)

	return out
}
