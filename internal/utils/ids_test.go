package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		assert.Len(t, id, IDLength)
		// Every character comes from the uppercase-alphanumeric alphabet
		for _, r := range id {
			assert.True(t, strings.ContainsRune(idAlphabet, r), "unexpected character %q in %q", r, id)
		}
		seen[id] = true
	}
	// Not a uniqueness guarantee, but 1000 draws from a 36^6 space should
	// essentially never be a single repeated value
	assert.Greater(t, len(seen), 1)
}
