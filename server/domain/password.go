package domain

import (
	"crypto/subtle"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// PasswordHash is a 32-byte keyed BLAKE3 digest of a channel password.
type PasswordHash [32]byte

// passwordDomainKey separates password digests from any other BLAKE3 use.
// Changing it invalidates every stored channel password.
var passwordDomainKey = [32]byte{
	'p', 'u', 's', 'h', 'y', '.', 'c', 'h', 'a', 'n', 'n', 'e', 'l', '.',
	'p', 'a', 's', 's', 'w', 'o', 'r', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func HashPassword(password string) PasswordHash {
	hasher, err := blake3.NewKeyed(passwordDomainKey[:])
	if err != nil {
		// only returned for a key that is not 32 bytes
		panic("domain: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write([]byte(password))
	var hash PasswordHash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// PasswordHashFromBytes copies a stored digest. It reports false when b
// is not exactly 32 bytes.
func PasswordHashFromBytes(b []byte) (PasswordHash, bool) {
	var hash PasswordHash
	if len(b) != len(hash) {
		return hash, false
	}
	copy(hash[:], b)
	return hash, true
}

func (h PasswordHash) Matches(password string) bool {
	candidate := HashPassword(password)
	return subtle.ConstantTimeCompare(h[:], candidate[:]) == 1
}

func (h PasswordHash) String() string {
	return hex.EncodeToString(h[:])
}
