package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Timestamps

	"github.com/RaY8118/VoteVision/internal/domain" // Importing domain models
	"github.com/RaY8118/VoteVision/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CastVoteRequest names the candidate being voted for
type CastVoteRequest struct {
	CandidateID string `json:"candidate_id" binding:"required"` // Candidate must be provided
}

// CastVoteHandler records one vote for the authenticated voter. The checks run
// in a fixed order inside one transaction: election exists, election active,
// voter has not voted, candidate registered. The unique index on
// (election_id, voter_id) is the true duplicate-vote guarantee; the in-
// transaction check is an early exit.
func CastVoteHandler(db *gorm.DB, rdb *redis.Client, requireFaceCheck bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		voterID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		electionID := c.Param("id") // Election ID from the path
		var req CastVoteRequest     // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// When enabled, voting requires an unexpired face verification session
		if requireFaceCheck {
			var session domain.FaceVerificationSession
			err := db.Where("user_id = ? AND expires_at > ?", voterID, time.Now()).
				Order("expires_at desc").
				First(&session).Error
			if err != nil {
				// No valid session: the voter must verify their face first
				c.JSON(http.StatusForbidden, gin.H{"error": "Face verification required before voting"})
				return
			}
		}
		var vote domain.Vote // The vote to be created
		// The whole check-then-insert sequence is one atomic transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			// 1. The election must exist
			var election domain.Election
			if err := tx.Where("election_id = ?", electionID).First(&election).Error; err != nil {
				return ErrElectionNotFound
			}
			// 2. The election must be active
			if election.Status != domain.StatusActive {
				return ErrElectionNotActive
			}
			// 3. The voter must not have voted in this election yet
			var count int64
			if err := tx.Model(&domain.Vote{}).
				Where("election_id = ? AND voter_id = ?", electionID, voterID).
				Count(&count).Error; err != nil {
				return err // Storage failure
			}
			if count > 0 {
				return ErrAlreadyVoted
			}
			// 4. The candidate must be registered in this election
			var edge domain.ElectionCandidate
			if err := tx.Where("election_id = ? AND candidate_id = ?", electionID, req.CandidateID).
				First(&edge).Error; err != nil {
				return ErrCandidateNotRegistered
			}
			// All checks passed: persist the immutable vote
			vote = domain.Vote{
				VoteID:      uniqueID(tx, &domain.Vote{}, "vote_id"), // Collision-checked short ID
				ElectionID:  electionID,                              // Election voted in
				VoterID:     voterID.(string),                        // Voting user
				CandidateID: req.CandidateID,                         // Candidate voted for
				Timestamp:   time.Now().UTC(),                        // When the vote was cast
			}
			return tx.Create(&vote).Error // Commit or rollback with the insert result
		})
		// Map transaction errors to HTTP statuses
		switch {
		case errors.Is(err, ErrElectionNotFound):
			// Unknown election
			c.JSON(http.StatusNotFound, gin.H{"error": ErrElectionNotFound.Error()})
			return
		case errors.Is(err, ErrElectionNotActive):
			// Voting outside the active phase
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrElectionNotActive.Error()})
			return
		case errors.Is(err, ErrCandidateNotRegistered):
			// Candidate exists globally but is not in this election
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrCandidateNotRegistered.Error()})
			return
		case errors.Is(err, ErrAlreadyVoted), errors.Is(err, gorm.ErrDuplicatedKey):
			// Pre-check hit, or a concurrent vote won the unique index race
			c.JSON(http.StatusConflict, gin.H{"error": ErrAlreadyVoted.Error()})
			return
		case err != nil:
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"election_id": electionID,  // Election ID
				"voter_id":    voterID,     // Voter ID
				"error":       err.Error(), // Error message
			}).Error("Vote failed") // Log vote failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
			return
		}
		// Log successful vote (never the candidate, to keep logs ballot-free)
		logrus.WithFields(logrus.Fields{
			"election_id": electionID,                      // Election ID
			"voter_id":    voterID,                         // Voter ID
			"timestamp":   time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Vote cast") // Log vote success
		// Invalidate cached results for this election
		_ = utils.DeleteCache(context.Background(), rdb, "election:"+electionID+":results")
		// Return success response
		c.JSON(http.StatusCreated, gin.H{"message": "Vote cast successfully", "vote_id": vote.VoteID})
	}
}
