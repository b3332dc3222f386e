package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerAlphabet = "abcdefghijkmnopqrstuvwxyz"
	digitAlphabet = "23456789"

	minTemporaryPasswordLength = 8
)

var errEmptyAlphabet = errors.New("alphabet must not be empty")

// TemporaryPassword returns a random password of at least eight characters
// holding an upper case letter, a lower case letter and a digit. Ambiguous
// characters such as 0/O and 1/l are never used.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	value := make([]byte, 0, length)
	for _, alphabet := range []string{upperAlphabet, lowerAlphabet, digitAlphabet} {
		char, err := randomChar(alphabet)
		if err != nil {
			return "", err
		}
		value = append(value, char)
	}

	const alphabet = upperAlphabet + lowerAlphabet + digitAlphabet
	for len(value) < length {
		char, err := randomChar(alphabet)
		if err != nil {
			return "", err
		}
		value = append(value, char)
	}

	if err := shuffle(value); err != nil {
		return "", err
	}
	return string(value), nil
}

func randomChar(alphabet string) (byte, error) {
	if alphabet == "" {
		return 0, errEmptyAlphabet
	}
	position, err := randomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[position], nil
}

// shuffle is a Fisher-Yates pass driven by crypto/rand.
func shuffle(value []byte) error {
	for index := len(value) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return err
		}
		value[index], value[swap] = value[swap], value[index]
	}
	return nil
}

func randomIndex(limit int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
