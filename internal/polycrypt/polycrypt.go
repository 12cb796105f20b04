// Package polycrypt hashes and verifies account secrets.
//
// The stored form is "base64(salt)$base64(key)" where the key is a
// PBKDF2-SHA256 derivation over the secret mixed with a polynomial
// rolling hash of secret and salt. The polynomial step exists for
// stored-hash compatibility; the security contract is the PBKDF2
// parameters below.
package polycrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltLength = 32
	iterations = 100000
	keyLength  = 64

	polyBase  = 31
	polyPrime = 1000000007
)

// ErrEmptySecret is returned by Hash when the secret is empty.
var ErrEmptySecret = errors.New("polycrypt: secret is empty")

// polynomialHash folds the secret and salt through a Rabin-Karp style
// accumulator over a fixed prime modulus.
func polynomialHash(secret string, salt []byte) int64 {
	var result int64
	for _, b := range append([]byte(secret), salt...) {
		result = (result*polyBase + int64(b)) % polyPrime
	}
	return result
}

func derive(secret string, salt []byte) []byte {
	enhanced := secret + ":" + strconv.FormatInt(polynomialHash(secret, salt), 10)
	return pbkdf2.Key([]byte(enhanced), salt, iterations, keyLength, sha256.New)
}

// Hash derives a storable form of the secret with a fresh random salt.
// Two calls on the same secret produce different stored forms.
func Hash(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := derive(secret, salt)
	return base64.StdEncoding.EncodeToString(salt) + "$" + base64.StdEncoding.EncodeToString(key), nil
}

// Verify reports whether secret matches the stored form. Malformed stored
// forms are indistinguishable from mismatches: the answer is false, never
// an error. The comparison is constant-time.
func Verify(secret, stored string) bool {
	if secret == "" || stored == "" {
		return false
	}

	parts := strings.Split(stored, "$")
	if len(parts) != 2 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	storedKey, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	key := derive(secret, salt)
	return subtle.ConstantTimeCompare(key, storedKey) == 1
}

// Strength scores a secret from 0 to 100 with a coarse label. Advisory
// only; it never blocks hashing.
func Strength(secret string) (int, string) {
	if secret == "" {
		return 0, "Empty"
	}

	score := len(secret) * 10
	if score > 50 {
		score = 50
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range secret {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if hasUpper {
		score += 10
	}
	if hasLower {
		score += 10
	}
	if hasDigit {
		score += 10
	}
	if hasSpecial {
		score += 15
	}

	classes := 0
	for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if ok {
			classes++
		}
	}
	if classes >= 3 {
		score += 5
	}
	if score > 100 {
		score = 100
	}

	switch {
	case score < 30:
		return score, "Very Weak"
	case score < 50:
		return score, "Weak"
	case score < 70:
		return score, "Medium"
	case score < 90:
		return score, "Strong"
	default:
		return score, "Very Strong"
	}
}
