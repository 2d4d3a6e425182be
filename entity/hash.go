package entity

import (
	"fmt"
	"hash/maphash"
)

var hashSeed = maphash.MakeSeed()

// hashAny is the default canonical-value hasher: it formats the value
// and hashes the resulting bytes. Good enough for the scalar/string/bool
// values most properties hold; properties with richer canonical types
// (tuples, slices) should register their own HashCanonical that hashes
// the structure directly instead of relying on formatting.
func hashAny(v any) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	_, _ = fmt.Fprintf(&h, "%T:%v", v, v)
	return h.Sum64()
}

// hashTuple combines the canonical hashes of a multi-property's
// constituents, order-independent-by-construction because the tuple is
// sorted into descriptor order before hashing (see multi.go).
func hashTuple(parts []uint64) uint64 {
	var h maphash.Hash
	h.SetSeed(hashSeed)
	for _, p := range parts {
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(p >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
