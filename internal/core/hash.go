package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentID derives the content identifier for a document: the SHA-256 digest
// of the exact upload bytes, hex encoded. Identical bytes always map to the
// same identifier regardless of filename, which is what makes it usable as a
// cache key across users and uploads.
func ContentID(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
