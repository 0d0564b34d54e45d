package calclient

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint computes the weak entity tag of a document: W/"<hex>" over
// the SHA-256 of its UTF-8 bytes. Byte-identical documents always
// fingerprint identically; this is the sole conflict-detection token, there
// is no per-field versioning behind it.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}
