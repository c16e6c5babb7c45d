package compress

import (
	"fmt"

	"github.com/klauspost/compress/s2"

	"github.com/monktastic/graphpipe-go/format"
)

// S2Compressor compresses bodies in the S2 block format.
type S2Compressor struct{}

var _ Codec = S2Compressor{}

// NewS2Compressor returns an S2 codec.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (S2Compressor) Type() format.CompressionType { return format.CompressionS2 }

func (S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n > MaxDecompressedSize {
		return nil, fmt.Errorf("s2 decompression failed: decoded size %d exceeds %d", n, MaxDecompressedSize)
	}

	out, err := s2.Decode(make([]byte, n), data)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return out, nil
}
