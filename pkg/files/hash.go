package files

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Hasher computes the content address of an uploaded byte stream.
type Hasher func(content []byte) string

// SHA256Hasher is the default content hasher.
func SHA256Hasher(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// MD5Hasher matches legacy deployments whose stored hashes are MD5.
// Collisions only cause spurious dedup hits, not data loss, but prefer
// SHA256Hasher for new data.
func MD5Hasher(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Blake2bHasher is a faster alternative for large uploads.
func Blake2bHasher(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}
