// Package hash computes the xxHash64 digests used for tensor fingerprints and request
// log correlation.
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Sum computes the xxHash64 of data.
func Sum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Digest accumulates an xxHash64 over a sequence of fields.
//
// Each field is length- or tag-prefixed so that different field splits of the same
// bytes produce different digests.
type Digest struct {
	d       *xxhash.Digest
	scratch [8]byte
}

// New returns an empty Digest.
func New() *Digest {
	return &Digest{d: xxhash.New()}
}

// Uint8 adds a single byte.
func (d *Digest) Uint8(v uint8) {
	d.scratch[0] = v
	_, _ = d.d.Write(d.scratch[:1])
}

// Int64 adds v in little-endian order.
func (d *Digest) Int64(v int64) {
	binary.LittleEndian.PutUint64(d.scratch[:], uint64(v))
	_, _ = d.d.Write(d.scratch[:])
}

// Bytes adds the length of b followed by b.
func (d *Digest) Bytes(b []byte) {
	d.Int64(int64(len(b)))
	_, _ = d.d.Write(b)
}

// Text adds the length of s followed by s.
func (d *Digest) Text(s string) {
	d.Int64(int64(len(s)))
	_, _ = d.d.WriteString(s)
}

// Sum64 returns the digest of everything added so far.
func (d *Digest) Sum64() uint64 {
	return d.d.Sum64()
}
