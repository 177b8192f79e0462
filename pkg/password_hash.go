package pkg

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the hex encoded SHA-256 digest of the password.
// The digest is deliberately deterministic and unsalted to stay compatible
// with the already stored credentials. Moving to a salted, memory-hard hash
// requires a credential migration first.
func HashPassword(password string) string {
	digest := sha256.Sum256([]byte(password))
	return hex.EncodeToString(digest[:])
}

func CheckPasswordHash(password, hash string) bool {
	return HashPassword(password) == hash
}
