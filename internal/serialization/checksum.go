package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Checksum is the SHA-256 digest of a .born data section.
type Checksum [ChecksumSize]byte

// SumData returns the checksum of a weight data section.
func SumData(data []byte) Checksum {
	return Checksum(sha256.Sum256(data))
}

// String returns the digest as lowercase hex.
func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}

// Verify returns an error wrapping ErrChecksumMismatch when data does not
// hash to c.
func (c Checksum) Verify(data []byte) error {
	if got := SumData(data); got != c {
		return fmt.Errorf("%w: header records %.12s, data hashes to %.12s", ErrChecksumMismatch, c, got)
	}
	return nil
}
