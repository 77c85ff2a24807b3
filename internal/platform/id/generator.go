package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// entropyBytes gives 128 bits per ID, rendered as 32 hex characters.
const entropyBytes = 16

// Generator creates opaque IDs suitable for external references.
// Services depend on this interface so tests can inject sequential
// generators.
type Generator interface {
	NewID() (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID() (string, error) {
	buf := make([]byte, entropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
