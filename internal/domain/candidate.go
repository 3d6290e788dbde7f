package domain

// Candidate Model
type Candidate struct {
	CandidateID string `gorm:"primaryKey;size:6" json:"candidate_id"` // 6-character candidate ID
	Name        string `gorm:"not null" json:"name"`                  // Candidate name
	Party       string `gorm:"not null" json:"party"`                 // Party affiliation
	Manifesto   string `gorm:"not null" json:"manifesto"`             // Manifesto text
}
