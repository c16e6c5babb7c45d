// Package encoding implements the tensor type registry: one Converter per supported
// element kind, describing its wire tag, byte width and how to pack a typed Go slice
// into little-endian bytes and back.
//
// # Registry
//
// A Registry is built once from a fixed list of seven converters (Int8, Int16, Int32,
// Int64, Float32, Float64 and String) and is read-only afterwards, so a single instance
// may be shared by any number of goroutines. Default returns a lazily built
// process-wide registry; callers that want an explicit handle use NewRegistry.
//
//	reg := encoding.Default()
//	conv, err := reg.ByType(format.TypeInt16)
//	if err != nil {
//	    return err // errs.ErrKindNotSupported
//	}
//	n, err := conv.Pack(dst, []int16{1, 2, 3})
//
// Lookups never panic: unknown tags, widths or Go types return errs.ErrKindNotSupported.
//
// # Width lookups
//
// ByWidth exists for external dense-array ingestion, where the source only exposes an
// element width. Widths collide (Int32/Float32 are both 4 bytes, Int64/Float64 both 8);
// such sources already commit to float semantics, so ties resolve to the floating-point
// kind.
//
// # Byte order
//
// Payloads are little-endian regardless of host byte order. On little-endian hosts the
// typed slice is copied through a raw byte view; on other hosts each element goes
// through the endian engine. Both paths produce identical bytes.
//
// # String tensors
//
// The String converter has no fixed width. Its Pack and Unpack return
// errs.ErrUnsupportedConversion; string payloads travel as a string list rather than a
// byte buffer and are handled by the tensor package.
package encoding
