package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/jurist/core"
)

// Key prefixes for cached corpus data
const (
	corpusDocPrefix         = "cordoc"
	corpusFingerprintPrefix = "corfpr"
)

// makeCorpusDocKey generates the key for a cached corpus document.
// The source URL is hashed so keys stay short and filesystem-safe.
func makeCorpusDocKey(source string) []byte {
	return []byte(fmt.Sprintf("%s:%d", corpusDocPrefix, core.IDFromContent([]byte(source))))
}

// makeCorpusFingerprintKey generates the key for a cached corpus fingerprint.
func makeCorpusFingerprintKey(source string) []byte {
	return []byte(fmt.Sprintf("%s:%d", corpusFingerprintPrefix, core.IDFromContent([]byte(source))))
}

// encodeFingerprint serializes a corpus fingerprint.
func encodeFingerprint(id core.ID) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

// decodeFingerprint deserializes a corpus fingerprint.
// Returns 0 for malformed or absent values.
func decodeFingerprint(data []byte) core.ID {
	if len(data) != 8 {
		return 0
	}
	return core.ID(binary.BigEndian.Uint64(data))
}
