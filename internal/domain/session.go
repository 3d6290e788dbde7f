package domain

import "time"

// FaceVerificationSession Model: a successful face match valid for a bounded
// window. Sessions are never revoked; expiry is the only termination path, and
// expired rows are simply ignored (no reaper).
type FaceVerificationSession struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                 // Auto-increment primary key
	UserID    string    `gorm:"size:6;not null;index" json:"user_id"` // User the verification belongs to
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`           // End of the verification window
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`     // When the face was verified
}

// Valid reports whether the session is still inside its verification window
func (s *FaceVerificationSession) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt) // Strictly before expiry
}
