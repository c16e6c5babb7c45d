package compress

import "github.com/monktastic/graphpipe-go/format"

// NoOpCompressor passes bodies through unchanged. Both directions return the input
// slice itself.
type NoOpCompressor struct{}

var _ Codec = NoOpCompressor{}

// NewNoOpCompressor returns the identity codec.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (NoOpCompressor) Type() format.CompressionType { return format.CompressionNone }

func (NoOpCompressor) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoOpCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }
