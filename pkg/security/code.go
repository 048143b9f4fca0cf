package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const CodeLength = 6

var codeSpace = big.NewInt(1_000_000)

// GenerateVerificationCode returns a uniformly random six digit code.
// Leading zeros are kept, so "004211" is a valid result.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to read random number, %w", err)
	}

	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}
