// Package auth hashes and verifies passwords with salted PBKDF2. The stored
// blob is salt followed by the derived key, so a single column holds both.
package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 65536
	keyLength  = 16
	saltLength = 16
)

// HashPassword derives a fresh salted hash for storage. The plaintext is never
// persisted anywhere.
func HashPassword(password string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha1.New)
	return append(salt, key...), nil
}

// Verify reports whether plaintext hashes to the stored salt-prefixed blob.
func Verify(password string, stored []byte) bool {
	if len(stored) != saltLength+keyLength {
		return false
	}
	salt := stored[:saltLength]
	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha1.New)
	return subtle.ConstantTimeCompare(key, stored[saltLength:]) == 1
}
