package rooms

import (
	"crypto/rand"
	"math/big"
	"strconv"
)

// Alphabet excludes ambiguous characters: 0, O, 1, I, L
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const CodeLength = 5

func GenerateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}

// GenerateNumeric returns a five digit room number for numeric deployments.
func GenerateNumeric() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+10000, 10), nil
}
