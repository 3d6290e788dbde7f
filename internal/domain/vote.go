package domain

import "time"

// Vote Model. Votes are immutable once created; the unique index on
// (election_id, voter_id) is the final guarantee that a voter votes at most
// once per election, regardless of what the handler pre-checks saw.
type Vote struct {
	VoteID      string    `gorm:"primaryKey;size:6" json:"vote_id"`                                   // 6-character vote ID
	ElectionID  string    `gorm:"size:6;not null;uniqueIndex:idx_votes_election_voter" json:"election_id"` // Election voted in
	VoterID     string    `gorm:"size:6;not null;uniqueIndex:idx_votes_election_voter" json:"voter_id"`    // Voting user
	CandidateID string    `gorm:"size:6;not null;index" json:"candidate_id"`                          // Candidate voted for
	Timestamp   time.Time `gorm:"not null" json:"timestamp"`                                          // When the vote was cast
}
