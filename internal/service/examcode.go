package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ExamCodeLength is the fixed length of minted exam codes.
const ExamCodeLength = 6

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	codeSymbols  = "!@#$%^&*"
)

// GenerateExamCode mints a random 6-character exam code. Codes are not
// checked for global uniqueness across requests; the collision probability
// over the alphabet is accepted as negligible for this use.
func GenerateExamCode(withSymbols bool) (string, error) {
	alphabet := codeAlphabet
	if withSymbols {
		alphabet += codeSymbols
	}

	code := make([]byte, ExamCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate exam code: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
