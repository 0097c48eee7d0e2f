// Package crypto provides the password digest used by the credential store.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the hex-encoded sha256 digest of the password.
// The digest is deterministic: the login path recomputes it and compares
// against the stored value.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// CheckPasswordHash reports whether the password digests to hash.
func CheckPasswordHash(hash, password string) bool {
	return HashPassword(password) == hash
}
