package hashtable

import (
	"crypto/sha1"
	"math/big"
	"strconv"

	"golang.org/x/text/encoding/charmap"
)

// Slot returns the home slot of key in a table of the given capacity: the
// SHA-1 digest of key read as a big-endian unsigned integer, modulo capacity.
// The on-disk dictionary is addressed with the same function, so it must not
// change. A zero capacity yields slot 0.
func Slot(key []byte, capacity uint64) uint64 {
	if capacity == 0 {
		return 0
	}
	sum := sha1.Sum(key)
	n := new(big.Int).SetBytes(sum[:])
	return n.Mod(n, new(big.Int).SetUint64(capacity)).Uint64()
}

// TermBytes encodes a term the way the builder hashed it: ISO-8859-1 when
// every rune fits, the UTF-8 bytes otherwise.
func TermBytes(term string) []byte {
	if b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(term)); err == nil {
		return b
	}
	return []byte(term)
}

// TermSlot is Slot applied to TermBytes(term).
func TermSlot(term string, capacity uint64) uint64 {
	return Slot(TermBytes(term), capacity)
}

func docIDBytes(id uint64) []byte {
	return strconv.AppendUint(nil, id, 10)
}
