package masking

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"loginetl/internal/constants"
)

// Hasher replaces PII values with a lower-case hex digest. The same input
// always yields the same digest, so masked columns stay joinable.
type Hasher struct {
	algorithm string
	newHash   func() hash.Hash
}

// NewHasher returns a hasher for algorithm; an empty name selects sha256.
func NewHasher(algorithm string) (*Hasher, error) {
	algorithm = strings.ToLower(algorithm)
	switch algorithm {
	case "", constants.HashSHA256:
		return &Hasher{algorithm: constants.HashSHA256, newHash: sha256.New}, nil
	case constants.HashSHA512:
		return &Hasher{algorithm: constants.HashSHA512, newHash: sha512.New}, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", algorithm)
	}
}

// Hash digests value as UTF-8 bytes.
func (h *Hasher) Hash(value string) string {
	d := h.newHash()
	d.Write([]byte(value))
	return hex.EncodeToString(d.Sum(nil))
}

func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// DigestLength is the hex length of every digest this hasher produces.
func (h *Hasher) DigestLength() int {
	return h.newHash().Size() * 2
}
