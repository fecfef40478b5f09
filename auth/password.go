// Package auth holds the password hasher and the cookie session store.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

var algorithms = map[string]func() hash.Hash{
	"sha256":      sha256.New,
	"sha384":      sha512.New384,
	"sha512":      sha512.New,
	"sha3-256":    sha3.New256,
	"sha3-512":    sha3.New512,
	"blake2b-256": mustBlake2b(blake2b.New256),
	"blake2b-512": mustBlake2b(blake2b.New512),
}

func mustBlake2b(fn func(key []byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := fn(nil)
		if err != nil {
			panic(err)
		}
		return h
	}
}

// Algorithms lists the supported PASSWORD_ALGORITHM values.
func Algorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hasher computes a deterministic keyed digest (HMAC) of a password. The same
// plaintext always yields the same hex string for a given algorithm and secret.
type Hasher struct {
	algorithm string
	newHash   func() hash.Hash
	secret    []byte
}

func NewHasher(algorithm, secret string) (*Hasher, error) {
	newHash, ok := algorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported password algorithm %q, expected one of %v", algorithm, Algorithms())
	}
	if secret == "" {
		return nil, fmt.Errorf("password secret must not be empty")
	}
	return &Hasher{algorithm: algorithm, newHash: newHash, secret: []byte(secret)}, nil
}

func (h *Hasher) Algorithm() string {
	return h.algorithm
}

func (h *Hasher) Hash(password string) string {
	mac := hmac.New(h.newHash, h.secret)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares in constant time.
func (h *Hasher) Verify(password, encoded string) bool {
	return subtle.ConstantTimeCompare([]byte(h.Hash(password)), []byte(encoded)) == 1
}
