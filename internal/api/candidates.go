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

// CandidateRequest carries the mutable candidate fields for create and update
type CandidateRequest struct {
	Name      string `json:"name" binding:"required"`      // Candidate name
	Party     string `json:"party" binding:"required"`     // Party affiliation
	Manifesto string `json:"manifesto" binding:"required"` // Manifesto text
}

// electionCandidates returns the candidates registered for an election,
// ordered by candidate ID for a stable listing
func electionCandidates(db *gorm.DB, electionID string) ([]domain.Candidate, error) {
	var candidates []domain.Candidate // Slice to hold candidates
	err := db.Model(&domain.Candidate{}).
		Joins("JOIN election_candidates ON election_candidates.candidate_id = candidates.candidate_id").
		Where("election_candidates.election_id = ?", electionID).
		Order("candidates.candidate_id ASC").
		Find(&candidates).Error
	return candidates, err // Return candidates and any query error
}

// CreateCandidateHandler creates a new candidate (admin only)
func CreateCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CandidateRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create candidate with a collision-checked 6-character ID
		candidate := domain.Candidate{
			CandidateID: uniqueID(db, &domain.Candidate{}, "candidate_id"), // Collision-checked short ID
			Name:        req.Name,                                          // Candidate name
			Party:       req.Party,                                         // Party affiliation
			Manifesto:   req.Manifesto,                                     // Manifesto text
		}
		// Attempt to create the candidate in the database
		if err := db.Create(&candidate).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Candidate name
				"error": err.Error(), // Error message
			}).Error("Failed to create candidate") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create candidate"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, "candidates:all") // Invalidate the candidate list
		c.JSON(http.StatusCreated, gin.H{"candidate": candidate})          // Return the created candidate
	}
}

// ListCandidatesHandler returns all candidates
func ListCandidatesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()                                       // Context for Redis operations
		var candidates []domain.Candidate                                 // Slice to hold candidates
		found, err := utils.GetCache(ctx, rdb, "candidates:all", &candidates) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"candidates": candidates, "cached": true})
			return
		}
		// If not in cache, fetch from DB
		if err := db.Order("candidate_id asc").Find(&candidates).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch candidates"})
			return
		}
		_ = utils.SetCache(ctx, rdb, "candidates:all", candidates, 60*time.Second) // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"candidates": candidates, "cached": false})    // Return candidates
	}
}

// GetCandidateHandler returns one candidate by ID
func GetCandidateHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidateID := c.Param("id")   // Candidate ID from the path
		var candidate domain.Candidate // Fetch candidate from database
		if err := db.Where("candidate_id = ?", candidateID).First(&candidate).Error; err != nil {
			// If candidate not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		// Return the candidate
		c.JSON(http.StatusOK, gin.H{"candidate": candidate})
	}
}

// UpdateCandidateHandler updates the mutable candidate fields (admin only)
func UpdateCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidateID := c.Param("id") // Candidate ID from the path
		var req CandidateRequest     // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var candidate domain.Candidate // Fetch candidate from database
		if err := db.Where("candidate_id = ?", candidateID).First(&candidate).Error; err != nil {
			// If candidate not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		// Update exactly the mutable fields, never the identity
		updates := map[string]any{
			"name":      req.Name,      // Candidate name
			"party":     req.Party,     // Party affiliation
			"manifesto": req.Manifesto, // Manifesto text
		}
		if err := db.Model(&candidate).Updates(updates).Error; err != nil {
			// If updating fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update candidate"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, "candidates:all") // Invalidate the candidate list
		c.JSON(http.StatusOK, gin.H{"candidate": candidate})               // Return the updated candidate
	}
}

// DeleteCandidateHandler removes a candidate entirely (admin only)
func DeleteCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		candidateID := c.Param("id")   // Candidate ID from the path
		var candidate domain.Candidate // Fetch candidate from database
		if err := db.Where("candidate_id = ?", candidateID).First(&candidate).Error; err != nil {
			// If candidate not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		// Remove the candidate and any election registrations together
		err := db.Transaction(func(tx *gorm.DB) error {
			// Delete the candidate's registration edges
			if err := tx.Where("candidate_id = ?", candidateID).Delete(&domain.ElectionCandidate{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Delete the candidate itself
			if err := tx.Where("candidate_id = ?", candidateID).Delete(&domain.Candidate{}).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete candidate"})
			return
		}
		_ = utils.DeleteCache(context.Background(), rdb, "candidates:all")        // Invalidate the candidate list
		c.JSON(http.StatusOK, gin.H{"message": "Candidate deleted successfully"}) // Return success response
	}
}

// ListElectionCandidatesHandler returns the candidates registered for an election
func ListElectionCandidatesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id") // Election ID from the path
		ctx := context.Background() // Context for Redis operations
		cacheKey := "election:" + electionID + ":candidates"
		var candidates []domain.Candidate                          // Slice to hold candidates
		found, err := utils.GetCache(ctx, rdb, cacheKey, &candidates) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"candidates": candidates, "cached": true})
			return
		}
		// The election must exist
		var election domain.Election
		if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
			// If election not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		}
		// Fetch the registered candidates
		candidates, err = electionCandidates(db, electionID)
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch candidates"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, candidates, 60*time.Second)      // Cache for 60 seconds
		c.JSON(http.StatusOK, gin.H{"candidates": candidates, "cached": false}) // Return candidates
	}
}

// AddElectionCandidateHandler registers a candidate into an election (admin
// only). Registration is allowed in any election phase.
func AddElectionCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id")           // Election ID from the path
		candidateID := c.Param("candidateId") // Candidate ID from the path
		// The election must exist
		var election domain.Election
		if err := db.Where("election_id = ?", electionID).First(&election).Error; err != nil {
			// If election not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Election not found"})
			return
		}
		// The candidate must exist
		var candidate domain.Candidate
		if err := db.Where("candidate_id = ?", candidateID).First(&candidate).Error; err != nil {
			// If candidate not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
			return
		}
		// Create the registration edge; the composite primary key rejects duplicates
		edge := domain.ElectionCandidate{
			ElectionID:  electionID,  // Election side of the edge
			CandidateID: candidateID, // Candidate side of the edge
		}
		if err := db.Create(&edge).Error; err != nil {
			// Duplicate registration hits the composite primary key
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Candidate is already registered for this election"})
				return
			}
			// Any other error is an internal failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register candidate"})
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"election_id":  electionID,  // Election ID
			"candidate_id": candidateID, // Candidate ID
		}).Info("Candidate registered for election")
		invalidateElectionCache(rdb, electionID)                                          // Drop cached reads
		c.JSON(http.StatusCreated, gin.H{"message": "Candidate added to election successfully"}) // Return success response
	}
}

// RemoveElectionCandidateHandler removes a candidate's registration from an
// election (admin only). Votes already cast for the candidate are untouched
// and still count in the tally.
func RemoveElectionCandidateHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		electionID := c.Param("id")           // Election ID from the path
		candidateID := c.Param("candidateId") // Candidate ID from the path
		// The registration edge must exist
		var edge domain.ElectionCandidate
		if err := db.Where("election_id = ? AND candidate_id = ?", electionID, candidateID).First(&edge).Error; err != nil {
			// If the edge does not exist, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Candidate is not registered for this election"})
			return
		}
		// Remove the registration edge
		if err := db.Where("election_id = ? AND candidate_id = ?", electionID, candidateID).Delete(&domain.ElectionCandidate{}).Error; err != nil {
			// If deletion fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove candidate"})
			return
		}
		// Log the removal
		logrus.WithFields(logrus.Fields{
			"election_id":  electionID,  // Election ID
			"candidate_id": candidateID, // Candidate ID
		}).Info("Candidate removed from election")
		invalidateElectionCache(rdb, electionID)                                            // Drop cached reads
		c.JSON(http.StatusOK, gin.H{"message": "Candidate removed from election successfully"}) // Return success response
	}
}
