package param

import (
	"math/rand/v2"
	"strings"
)

const (
	// Length is the number of characters in a generated value.
	Length = 10
	// Alphabet holds the symbols a value is drawn from.
	Alphabet = "abcdefghijklmnopqrstuvwxyz"
)

// Generate returns a fresh random value of Length lowercase letters.
// Safe for concurrent use; the package-level source is goroutine-safe.
func Generate() string {
	return GenerateN(Length)
}

// GenerateN returns n letters drawn uniformly, with replacement, from Alphabet.
func GenerateN(n int) string {
	if n <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(Alphabet[rand.IntN(len(Alphabet))])
	}
	return b.String()
}
