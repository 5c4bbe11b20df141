package cmap

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// hashSeed mirrors the original implementation's fixed XXH32 seed.
const hashSeed = 3266489917

// HashFunc computes a 32-bit hash for a key. Callers with a
// performance-sensitive key type should supply their own instead of
// relying on DefaultHasher's reflection-free but type-switched path.
type HashFunc[K comparable] func(K) uint32

// DefaultHasher returns a HashFunc built on xxhash. There is no 32-bit
// xxhash variant in the Go ecosystem, so the 64-bit digest is computed
// unseeded, hashSeed is XORed into it, and the low 32 bits are kept.
// The result is therefore not the value a seeded XXH32 would produce.
func DefaultHasher[K comparable]() HashFunc[K] {
	return func(k K) uint32 {
		return hashValue(any(k))
	}
}

func hashValue(v any) uint32 {
	var digest uint64
	switch x := v.(type) {
	case string:
		digest = xxhash.Sum64String(x)
	case []byte:
		digest = xxhash.Sum64(x)
	case int:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case int8:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case int16:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case int32:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case int64:
		digest = xxhash.Sum64(encodeInt64(x))
	case uint:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case uint8:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case uint16:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case uint32:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	case uint64:
		digest = xxhash.Sum64(encodeInt64(int64(x)))
	default:
		// Falls back to formatting the key; correct for any
		// comparable type but slower than the cases above.
		digest = xxhash.Sum64String(fmt.Sprintf("%v", x))
	}
	return uint32(digest ^ hashSeed)
}

func encodeInt64(n int64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(n))
	return b[:]
}
