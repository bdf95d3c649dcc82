package utils

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// MaxPasswordLength is the most bcrypt will hash, in bytes.
const MaxPasswordLength = 72

// HashPassword returns the bcrypt hash of plain at the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var decoys sync.Map // cost -> []byte

// VerifyDecoy spends the same bcrypt work as VerifyPassword against a hash
// that nothing matches. Login calls it for unknown emails so response time
// does not reveal whether an account exists.
func VerifyDecoy(plain string, cost int) {
	h, ok := decoys.Load(cost)
	if !ok {
		b, err := bcrypt.GenerateFromPassword([]byte("decoy-password-never-matches"), cost)
		if err != nil {
			return
		}
		h, _ = decoys.LoadOrStore(cost, b)
	}
	_ = bcrypt.CompareHashAndPassword(h.([]byte), []byte(plain))
}
