// Package format declares the small closed enumerations shared by the codec packages:
// the GraphPipe wire type tags and the HTTP body compression kinds.
package format

type (
	// Type is the wire type tag of a tensor element, as stored in the `type` field of a
	// GraphPipe tensor record. Values are fixed by the wire format.
	Type uint8
	// CompressionType selects the codec applied to HTTP request and response bodies.
	CompressionType uint8
)

const (
	TypeNull    Type = 0  // TypeNull is the zero tag; never produced by this client.
	TypeUint8   Type = 1  // TypeUint8 is reserved; not supported by this client.
	TypeInt8    Type = 2  // TypeInt8 is a signed 8-bit integer.
	TypeUint16  Type = 3  // TypeUint16 is reserved; not supported by this client.
	TypeInt16   Type = 4  // TypeInt16 is a signed 16-bit integer.
	TypeUint32  Type = 5  // TypeUint32 is reserved; not supported by this client.
	TypeInt32   Type = 6  // TypeInt32 is a signed 32-bit integer.
	TypeUint64  Type = 7  // TypeUint64 is reserved; not supported by this client.
	TypeInt64   Type = 8  // TypeInt64 is a signed 64-bit integer.
	TypeFloat16 Type = 9  // TypeFloat16 is reserved; not supported by this client.
	TypeFloat32 Type = 10 // TypeFloat32 is an IEEE 754 single.
	TypeFloat64 Type = 11 // TypeFloat64 is an IEEE 754 double.
	TypeString  Type = 12 // TypeString is a UTF-8 string carried in string_val.

	CompressionNone CompressionType = 0x1 // CompressionNone sends bodies as-is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 block compression.
)

func (t Type) String() string {
	switch t {
	case TypeNull:
		return "Null"
	case TypeUint8:
		return "Uint8"
	case TypeInt8:
		return "Int8"
	case TypeUint16:
		return "Uint16"
	case TypeInt16:
		return "Int16"
	case TypeUint32:
		return "Uint32"
	case TypeInt32:
		return "Int32"
	case TypeUint64:
		return "Uint64"
	case TypeInt64:
		return "Int64"
	case TypeFloat16:
		return "Float16"
	case TypeFloat32:
		return "Float32"
	case TypeFloat64:
		return "Float64"
	case TypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// IsFloat reports whether t is one of the floating-point tags.
func (t Type) IsFloat() bool {
	return t == TypeFloat16 || t == TypeFloat32 || t == TypeFloat64
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ContentEncoding returns the HTTP Content-Encoding token for c, or "" for
// CompressionNone and unknown values.
func (c CompressionType) ContentEncoding() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "x-s2"
	case CompressionLZ4:
		return "x-lz4-block"
	default:
		return ""
	}
}

// ParseContentEncoding maps a Content-Encoding token back to its CompressionType.
// The second result is false for tokens this package does not know.
func ParseContentEncoding(token string) (CompressionType, bool) {
	switch token {
	case "", "identity":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "x-s2":
		return CompressionS2, true
	case "x-lz4-block":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
