package common

import (
	"crypto/rand"
	"math/big"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// MakeRandAlphanumericString generates a cryptographically random string of
// the given length drawn from [a-zA-Z0-9]. Used for opaque upload tokens.
func MakeRandAlphanumericString(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = alphanumeric[n.Int64()]
	}
	return string(b), nil
}
