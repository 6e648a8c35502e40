package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// DigestHexLen is the length of a rendered digest: sha256 as lowercase hex.
const DigestHexLen = sha256.Size * 2

// DigestBytes returns the sha256 digest of data as lowercase hex.
// The digest depends on the bytes only, never on filename or metadata.
func DigestBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DigestReader hashes everything readable from r and returns the digest
// as lowercase hex.
func DigestReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, 1*1024*1024) // 1MB
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsDigest reports whether s looks like a valid digest: exactly
// DigestHexLen lowercase hex characters.
func IsDigest(s string) bool {
	if len(s) != DigestHexLen {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
