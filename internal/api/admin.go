package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Time durations

	"github.com/RaY8118/VoteVision/internal/domain" // Importing domain models
	"github.com/RaY8118/VoteVision/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// ListUsersHandler returns all users with face registration status (admin only)
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserResponse `json:"users"`       // List of users
			Page       int            `json:"page"`        // Current page
			PageSize   int            `json:"page_size"`   // Page size
			Total      int64          `json:"total"`       // Total number of users
			TotalPages int            `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		// Fetch total user count
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Apply stable order, offset and limit for pagination
		if err := db.Order("user_id asc").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare response data
		resp := make([]UserResponse, len(users))
		// Map users to response format
		for i := range users {
			resp[i] = toUserResponse(&users[i]) // Public view, never the hash or encoding
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// UpdateRoleRequest carries the new role for a user
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"` // New role must be provided
}

// UpdateUserRoleHandler changes a user's role (admin only)
func UpdateUserRoleHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID := c.Param("id") // Target user ID from the path
		var req UpdateRoleRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Only known roles are accepted
		if req.Role != domain.RoleVoter && req.Role != domain.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("user_id = ?", targetID).First(&user).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Update the role
		if err := db.Model(&user).Update("role", req.Role).Error; err != nil {
			// If updating fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
			return
		}
		// Log the role change
		logrus.WithFields(logrus.Fields{
			"user_id": user.UserID, // Target user
			"role":    req.Role,    // New role
		}).Info("User role updated")
		// Invalidate all cached user pages
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, "admin:users:")
		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(&user)}) // Return the updated user
	}
}

// ListVotesHandler returns the vote ledger, with optional filtering by
// election, voter, or date range (admin only). Votes are immutable, so this is
// a pure audit read.
func ListVotesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"election_id", "voter_id", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:votes:" + strings.Join(keyParts, ":")
		var cached struct {
			Votes      []domain.Vote `json:"votes"`       // Vote records
			Page       int           `json:"page"`        // Current page
			PageSize   int           `json:"page_size"`   // Page size
			Total      int64         `json:"total"`       // Total number of votes
			TotalPages int           `json:"total_pages"` // Total pages
		}

		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"votes":       cached.Votes,      // Vote records
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of votes
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		// Check and set page number and size from query params
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize   // Calculate offset for pagination
		query := db.Model(&domain.Vote{}) // Start building the query
		if electionID := c.Query("election_id"); electionID != "" {
			query = query.Where("election_id = ?", electionID) // Filter by election
		}
		if voterID := c.Query("voter_id"); voterID != "" {
			query = query.Where("voter_id = ?", voterID) // Filter by voter
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("timestamp >= ?", from) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("timestamp <= ?", to) // Filter by end date
		}
		var total int64 // Total vote count
		// Get total count of votes matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count votes"})
			return
		}
		var votes []domain.Vote // Slice to hold vote records
		// Fetch paginated votes with filters applied
		if err := query.Order("timestamp desc").Offset(offset).Limit(pageSize).Find(&votes).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch votes"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"votes":       votes,      // Vote records
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of votes
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
