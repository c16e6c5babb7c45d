package compress

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/monktastic/graphpipe-go/format"
)

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses bodies in the LZ4 block format. The block format does not
// record the decompressed size, so Decompress grows its buffer until the block fits.
type LZ4Compressor struct{}

var _ Codec = LZ4Compressor{}

// NewLZ4Compressor returns an LZ4 codec.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (LZ4Compressor) Type() format.CompressionType { return format.CompressionLZ4 }

func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:n], nil
}

// lz4MaxRatio bounds the expansion of one LZ4 block.
const lz4MaxRatio = 255

// Decompress starts with a buffer four times the input and doubles it on short-buffer
// errors, up to the largest size the block could expand to.
func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	limit := MaxDecompressedSize
	if len(data) < MaxDecompressedSize/lz4MaxRatio {
		limit = len(data)*lz4MaxRatio + 64
	}

	bufSize := min(len(data)*4, limit)
	for {
		buf := make([]byte, bufSize)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}

		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) || bufSize >= limit {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}

		bufSize = min(bufSize*2, limit)
	}
}
