package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	numberChars    = "0123456789"
)

var ErrInvalidLength = errors.New("random string length must be positive")

// RandomString returns n characters drawn from lowercase letters and digits
// using crypto/rand. Used for collision-resistant generated file names.
func RandomString(n int) (string, error) {
	if n < 1 {
		return "", ErrInvalidLength
	}

	pool := lowercaseChars + numberChars
	result := make([]byte, n)
	for i := range result {
		ch, err := randChar(pool)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	return string(result), nil
}

// randChar picks a random character from charset using crypto/rand.
func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
