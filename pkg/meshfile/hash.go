package meshfile

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash identifies the source data a compiled mesh was built from.
type Hash [32]byte

// String returns the lowercase hex form of the hash.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }

// ParseHash parses the hex form returned by String.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("parsing hash: %w", err)
	}
	if len(b) != len(h) {
		return h, fmt.Errorf("parsing hash: got %d bytes, want %d", len(b), len(h))
	}
	copy(h[:], b)
	return h, nil
}

// HashBytes returns the BLAKE3 hash of data.
func HashBytes(data []byte) Hash {
	return blake3.Sum256(data)
}

// SourceKey hashes source together with the options it is compiled with, so
// that changing either produces a different cache entry. The source is
// length-prefixed and options is encoded with deterministic CBOR.
func SourceKey(source []byte, options any) (Hash, error) {
	opts, err := encMode.Marshal(options)
	if err != nil {
		return Hash{}, fmt.Errorf("encoding options: %w", err)
	}

	h := blake3.New()
	h.Write(binary.LittleEndian.AppendUint64(nil, uint64(len(source))))
	h.Write(source)
	h.Write(opts)

	var key Hash
	copy(key[:], h.Sum(nil))
	return key, nil
}
