package domain

// User roles
const (
	RoleVoter = "voter" // Default role for registered users
	RoleAdmin = "admin" // Administrative role
)

// User Model
type User struct {
	UserID       string `gorm:"primaryKey;size:6" json:"user_id"` // 6-character user ID
	FullName     string `gorm:"not null" json:"full_name"`        // Display name
	Email        string `gorm:"unique;not null" json:"email"`     // Unique email address
	Password     string `gorm:"not null" json:"-"`                // Hashed password (never serialized)
	Role         string `gorm:"default:voter" json:"role"`        // Role: voter or admin
	FaceEncoding []byte `json:"-"`                                // Encoded face embedding, nil until registered
}

// HasFaceData reports whether a face embedding has been registered for the user
func (u *User) HasFaceData() bool {
	return len(u.FaceEncoding) > 0 // Empty or nil means no registered face
}
