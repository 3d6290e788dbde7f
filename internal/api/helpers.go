package api

import (
	"errors" // Sentinel errors

	"github.com/RaY8118/VoteVision/internal/utils" // Identifier generator

	"gorm.io/gorm" // GORM ORM library
)

// Sentinel errors returned from inside transactions so handlers can map them
// to HTTP statuses after rollback
var (
	ErrElectionNotFound       = errors.New("Election not found")                          // Unknown election ID
	ErrCandidateNotFound      = errors.New("Candidate not found")                         // Unknown candidate ID
	ErrElectionNotActive      = errors.New("Election is not active")                      // Voting outside the active phase
	ErrAlreadyVoted           = errors.New("You have already voted in this election")     // Duplicate vote attempt
	ErrCandidateNotRegistered = errors.New("Candidate is not registered for this election") // Vote for an unregistered candidate
)

// uniqueID loops generate -> lookup -> retry until the generated identifier is
// free in the given model's table. The loop is a best-effort fast path; the
// unique index on the column is the real guarantee, so a lookup error just
// falls through to the index.
func uniqueID(db *gorm.DB, model any, column string) string {
	for {
		id := utils.GenerateID() // Draw a candidate identifier
		var count int64
		// Check the relevant table for a collision
		if err := db.Model(model).Where(column+" = ?", id).Count(&count).Error; err != nil || count == 0 {
			return id // Free (or indeterminate: the unique index decides)
		}
	}
}
