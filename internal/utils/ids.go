package utils

import (
	"math/rand" // Not cryptographically secure; identifiers are not secrets
	"strings"   // Efficient string building
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789" // Uppercase-alphanumeric alphabet
const IDLength = 6                                        // Fixed identifier length

// GenerateID produces a short random identifier for elections, candidates,
// users and votes. Collisions are possible (36^6 space); callers loop
// generate -> lookup -> retry against the relevant table, and the unique
// index on the column is the real guarantee.
func GenerateID() string {
	var b strings.Builder // Build the ID character by character
	b.Grow(IDLength)
	for i := 0; i < IDLength; i++ {
		b.WriteByte(idAlphabet[rand.Intn(len(idAlphabet))]) // Random draw from the alphabet
	}
	return b.String() // Return the generated ID
}
