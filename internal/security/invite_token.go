package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// InviteTokenBytes is the amount of randomness in an approval token.
const InviteTokenBytes = 32

// TokenGenerator mints opaque single-use bearer tokens.
type TokenGenerator interface {
	Generate() (string, error)
}

type randomTokenGenerator struct{}

func NewTokenGenerator() TokenGenerator {
	return randomTokenGenerator{}
}

func (randomTokenGenerator) Generate() (string, error) {
	b := make([]byte, InviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
