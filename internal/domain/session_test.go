package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFaceVerificationSessionValidity(t *testing.T) {
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := FaceVerificationSession{
		UserID:    "ABC123",
		CreatedAt: issued,
		ExpiresAt: issued.Add(5 * time.Minute),
	}

	// Valid just inside the window, invalid just outside
	assert.True(t, session.Valid(issued.Add(4*time.Minute+59*time.Second)))
	assert.False(t, session.Valid(issued.Add(5*time.Minute+1*time.Second)))
	// Expiry is one-way: the boundary itself is already invalid
	assert.False(t, session.Valid(issued.Add(5*time.Minute)))
}
