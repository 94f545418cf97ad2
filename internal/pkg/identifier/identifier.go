// internal/pkg/identifier/identifier.go
package identifier

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// alphabet leaves out the look-alikes l, 1, o and 0
const alphabet = "abcdefghijkmnpqrstuvwxyz23456789"

// Generator produces opaque, URL-safe identifiers
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator draws fixed-length identifiers from alphabet
type RandomGenerator struct {
	Length int
}

// NewRandomGenerator creates a generator for identifiers of the given length
func NewRandomGenerator(length int) *RandomGenerator {
	return &RandomGenerator{Length: length}
}

// NewID returns a fresh random identifier
func (g *RandomGenerator) NewID() (string, error) {
	size := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(g.Length)

	for i := 0; i < g.Length; i++ {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}

	return b.String(), nil
}

// NewUUID returns a random UUID string
func NewUUID() string {
	return uuid.NewString()
}

// Slugify lowercases s, keeps letters and digits, and joins words with single hyphens
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false

	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		default:
			pendingDash = true
		}
	}

	return b.String()
}
