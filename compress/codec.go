package compress

import (
	"fmt"

	"github.com/monktastic/graphpipe-go/errs"
	"github.com/monktastic/graphpipe-go/format"
)

// MaxDecompressedSize bounds the output of every Decompress call.
const MaxDecompressedSize = 256 * 1024 * 1024 // 256MiB

// Compressor compresses a complete body.
type Compressor interface {
	// Compress returns the compressed form of data. data is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress returns the original bytes of data, failing on corrupt input or when
	// the output would exceed MaxDecompressedSize.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions for one algorithm.
type Codec interface {
	Compressor
	Decompressor

	// Type returns the algorithm.
	Type() format.CompressionType
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: compression %s (%d)", errs.ErrKindNotSupported, compressionType, uint8(compressionType))
}

// ForContentEncoding returns the codec for an HTTP Content-Encoding token.
func ForContentEncoding(token string) (Codec, error) {
	ct, ok := format.ParseContentEncoding(token)
	if !ok {
		return nil, fmt.Errorf("%w: content encoding %q", errs.ErrKindNotSupported, token)
	}

	return GetCodec(ct)
}
