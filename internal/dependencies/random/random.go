package random

import (
	"crypto/rand"
	"math/big"
)

// Random provides randomness that can be mocked for testing
type Random interface {
	// Code generates a random string of the given length drawn from the
	// given alphabet
	Code(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Code generates a random string of the given length from the given alphabet
func (r *CryptoRandom) Code(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand should never fail; fall back to the first symbol
			n = big.NewInt(0)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out)
}
