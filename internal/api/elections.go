package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Time durations

	"github.com/RaY8118/VoteVision/internal/domain" // Importing domain models
	"github.com/RaY8118/VoteVision/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ElectionRequest carries the mutable election fields for create and update.
// Identity and status are never settable through it.
type ElectionRequest struct {
	Title       string    `json:"title" binding:"required"`      // Election title
	Description string    `json:"description"`                   // Optional description
	StartDate   time.Time `json:"start_date" binding:"required"` // Informational start date
	EndDate     time.Time `json:"end_date" binding:"required"`   // Informational end date
}

// VoteResult is one candidate's tally line
type VoteResult struct {
	CandidateID string `json:"candidate_id"` // Candidate ID
	Name        string `json:"name"`         // Candidate name
	Party       string `json:"party"`        // Party affiliation
	VoteCount   int64  `json:"vote_count"`   // Number of votes received
}

// invalidateElectionCache drops all cached reads for one election plus the list
func invalidateElectionCache(rdb *redis.Client, electionID string) {
	ctx := context.Background()                                       // Context for Redis operations
	_ = utils.DeleteCache(ctx, rdb, "elections:all")                  // Invalidate the election list
	_ = utils.DeleteCacheByPrefix(ctx, rdb, "election:"+electionID)   // Invalidate detail, candidates, results
}

// CreateElectionHandler creates a new election in upcoming status (admin only)
func CreateElectionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ElectionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// New elections always start in upcoming status
		election := domain.Election{
			ElectionID:  uniqueID(db, &domain.Election{}, "election_id"), // Collision-checked short ID
			Title:       req.Title,                                       // Election title
			Description: req.Description,                                 // Optional description
			StartDate:   req.StartDate,                                   // Informational start date
			EndDate:     req.EndDate,                                     // Informational end date
			Status:      domain.StatusUpcoming,                           // Initial lifecycle status
		}
		// Attempt to create the election in the database
		if err := db.Create(&election).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"title": req.Title,   // Election title
				"error": err.Error(), // Error message
			}).Error("Failed to create election") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create election"})
			return
		}
		// Invalidate the cached election list
		_ = utils.DeleteCache(context.Background(), rdb, "elections:all")
		// Return the created election
		c.JSON(http.StatusCreated, gin.H{"election": election})
	}
}

// ListElectionsHandler returns all elections
func ListElectionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()                                    // Context for Redis operations
		var elections []domain.Election                                // Slice to hold elections
		found, err := utils.GetCache(ctx, rdb, "elections:all", &elections) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"elections": elections, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Order("election_id asc").Find(&elections).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch elections"})
			return
		}
		_ = utils.SetCache(ctx, rdb, "elections:all", elections, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"elections": elections, "cached": false})    // Return elections
	}
}

// GetElectionHandler returns one election with its registered candidates
func GetElectionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id") // Election ID from the path
		ctx := context.Background() // Context for Redis operations
		cacheKey := "election:" + electionID
		var cached struct {
			Election   domain.Election    `json:"election"`   // The election
			Candidates []domain.Candidate `json:"candidates"` // Registered candidates
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"election": cached.Election, "candidates": cached.Candidates, "cached": true})
			return
		}
		var election domain.Election // Fetch election from database
		if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
			// If election not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		}
		// Fetch the candidates registered for this election
		candidates, err := electionCandidates(db, electionID)
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch candidates"})
			return
		}
		cached.Election = election     // Cache the election
		cached.Candidates = candidates // Cache the candidates
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, 60*time.Second)                         // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"election": election, "candidates": candidates, "cached": false}) // Return election
	}
}

// UpdateElectionHandler updates the mutable election fields (admin only).
// Listing the fields explicitly keeps identity and status out of reach.
func UpdateElectionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id") // Election ID from the path
		var req ElectionRequest     // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var election domain.Election // Fetch election from database
		if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
			// If election not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		}
		// Update exactly the mutable fields
		updates := map[string]any{
			"title":       req.Title,       // Election title
			"description": req.Description, // Optional description
			"start_date":  req.StartDate,   // Informational start date
			"end_date":    req.EndDate,     // Informational end date
		}
		if err := db.Model(&election).Updates(updates).Error; err != nil {
			// If updating fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update election"})
			return
		}
		invalidateElectionCache(rdb, electionID)                // Drop cached reads
		c.JSON(http.StatusOK, gin.H{"election": election})      // Return the updated election
	}
}

// DeleteElectionHandler deletes an election and cascades to its votes and
// candidate registrations atomically (admin only)
func DeleteElectionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id")  // Election ID from the path
		var election domain.Election // Fetch election from database
		if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
			// If election not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		}
		// All three deletes succeed or none do
		err := db.Transaction(func(tx *gorm.DB) error {
			// Delete all votes cast in this election
			if err := tx.Where("election_id = ?", electionID).Delete(&domain.Vote{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Delete all candidate registrations for this election
			if err := tx.Where("election_id = ?", electionID).Delete(&domain.ElectionCandidate{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Delete the election itself
			if err := tx.Where("election_id = ?", electionID).Delete(&domain.Election{}).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"election_id": electionID,  // Election ID
				"error":       err.Error(), // Error message
			}).Error("Election deletion failed") // Log deletion failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete election"})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"election_id": electionID, // Election ID
			"title":       election.Title,
		}).Info("Election deleted")
		invalidateElectionCache(rdb, electionID)                              // Drop cached reads
		c.JSON(http.StatusOK, gin.H{"message": "Election deleted successfully"}) // Return success response
	}
}

// transitionElection moves an election from one status to the next. The
// status guard in the UPDATE makes the transition safe against a concurrent
// transition winning first.
func transitionElection(db *gorm.DB, electionID, from, to string) error {
	var election domain.Election // Fetch election from database
	if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
		return ErrElectionNotFound // Unknown election
	}
	// Guarded update: only rows still in the expected status transition
	res := db.Model(&domain.Election{}).
		Where("election_id = ? AND status = ?", electionID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error // Storage failure
	}
	// Zero rows means the election was not in the expected status
	if res.RowsAffected == 0 {
		return gorm.ErrInvalidData
	}
	return nil // Transition applied
}

// StartElectionHandler moves an upcoming election to active (admin only)
func StartElectionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id") // Election ID from the path
		// Only upcoming elections can start
		err := transitionElection(db, electionID, domain.StatusUpcoming, domain.StatusActive)
		switch {
		case errors.Is(err, ErrElectionNotFound):
			// Unknown election
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		case errors.Is(err, gorm.ErrInvalidData):
			// Wrong lifecycle phase
			c.JSON(http.StatusBadRequest, gin.H{"error": "Election is not in upcoming status"})
			return
		case err != nil:
			// Storage failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start election"})
			return
		}
		// Log the transition
		logrus.WithFields(logrus.Fields{
			"election_id": electionID,          // Election ID
			"status":      domain.StatusActive, // New status
		}).Info("Election started")
		invalidateElectionCache(rdb, electionID)                              // Drop cached reads
		c.JSON(http.StatusOK, gin.H{"message": "Election started successfully"}) // Return success response
	}
}

// EndElectionHandler moves an active election to completed (admin only)
func EndElectionHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id") // Election ID from the path
		// Only active elections can end
		err := transitionElection(db, electionID, domain.StatusActive, domain.StatusCompleted)
		switch {
		case errors.Is(err, ErrElectionNotFound):
			// Unknown election
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		case errors.Is(err, gorm.ErrInvalidData):
			// Wrong lifecycle phase
			c.JSON(http.StatusBadRequest, gin.H{"error": "Election is not active"})
			return
		case err != nil:
			// Storage failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to end election"})
			return
		}
		// Log the transition
		logrus.WithFields(logrus.Fields{
			"election_id": electionID,             // Election ID
			"status":      domain.StatusCompleted, // New status
		}).Info("Election ended")
		invalidateElectionCache(rdb, electionID)                            // Drop cached reads
		c.JSON(http.StatusOK, gin.H{"message": "Election ended successfully"}) // Return success response
	}
}

// ResultsHandler returns the ranked tally and winner of a completed election
func ResultsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id")  // Election ID from the path
		var election domain.Election // Fetch election from database
		if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
			// If election not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		}
		// Results are only available once the election is completed
		if election.Status != domain.StatusCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Election results are not available yet"})
			return
		}
		ctx := context.Background() // Context for Redis operations
		cacheKey := "election:" + electionID + ":results"
		var cached struct {
			Results []VoteResult `json:"results"` // Ranked tally
			Winner  VoteResult   `json:"winner"`  // First element of the tally
		}
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"results": cached.Results, "winner": cached.Winner, "cached": true})
			return
		}
		// Group votes by candidate, count, and rank. Descending count with
		// candidate ID ascending as the deterministic tie-break.
		var results []VoteResult
		err = db.Model(&domain.Vote{}).
			Select("votes.candidate_id, candidates.name, candidates.party, COUNT(votes.vote_id) AS vote_count").
			Joins("JOIN candidates ON candidates.candidate_id = votes.candidate_id").
			Where("votes.election_id = ?", electionID).
			Group("votes.candidate_id, candidates.name, candidates.party").
			Order("vote_count DESC, votes.candidate_id ASC").
			Scan(&results).Error
		if err != nil {
			// If the tally query fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute results"})
			return
		}
		// A completed election with zero votes has no results
		if len(results) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No votes found for this election"})
			return
		}
		cached.Results = results   // Cache the tally
		cached.Winner = results[0] // Winner is the first element of the ranked tally
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, 5*time.Minute)                         // Completed results are stable; cache longer
		c.JSON(http.StatusOK, gin.H{"results": results, "winner": results[0], "cached": false}) // Return results
	}
}
