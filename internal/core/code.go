package core

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeMin = 100000000
	codeMax = 999999999
)

// GenerateCode returns a 9-digit code drawn uniformly from [codeMin, codeMax].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
