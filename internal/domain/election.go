package domain

import "time"

// Election statuses. Status only moves forward: upcoming -> active -> completed.
const (
	StatusUpcoming  = "upcoming"  // Created but not yet started
	StatusActive    = "active"    // Accepting votes
	StatusCompleted = "completed" // Closed, results available
)

// Election Model
type Election struct {
	ElectionID  string    `gorm:"primaryKey;size:6" json:"election_id"`       // 6-character election ID
	Title       string    `gorm:"not null" json:"title"`                      // Election title
	Description string    `json:"description"`                                // Optional description
	StartDate   time.Time `gorm:"not null" json:"start_date"`                 // Informational start date
	EndDate     time.Time `gorm:"not null" json:"end_date"`                   // Informational end date
	Status      string    `gorm:"not null;default:upcoming" json:"status"`    // Lifecycle status (the authority, not the dates)
}

// ElectionCandidate Model: registration edge between an election and a candidate.
// The composite primary key enforces uniqueness per pair.
type ElectionCandidate struct {
	ElectionID       string    `gorm:"primaryKey;size:6" json:"election_id"`         // Foreign key to Election
	CandidateID      string    `gorm:"primaryKey;size:6" json:"candidate_id"`        // Foreign key to Candidate
	RegistrationDate time.Time `gorm:"autoCreateTime" json:"registration_date"`      // When the candidate was registered
}
