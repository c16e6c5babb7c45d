package pool

import (
	"sync"

	flatbuffers "github.com/google/flatbuffers/go"
)

// Initial and maximum retained sizes of pooled flatbuffers builders.
const (
	BuilderDefaultSize  = 1024 * 4         // 4KiB
	BuilderMaxThreshold = 1024 * 1024 * 16 // 16MiB
)

var builderPool = sync.Pool{
	New: func() any { return flatbuffers.NewBuilder(BuilderDefaultSize) },
}

// GetBuilder retrieves a reset flatbuffers builder.
func GetBuilder() *flatbuffers.Builder {
	b, _ := builderPool.Get().(*flatbuffers.Builder)
	return b
}

// PutBuilder returns b to the pool. Bytes previously obtained from b.FinishedBytes must
// not be used afterwards.
func PutBuilder(b *flatbuffers.Builder) {
	if b == nil || cap(b.Bytes) > BuilderMaxThreshold {
		return
	}

	b.Reset()
	builderPool.Put(b)
}
