package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"regexp"   // Regular expressions
	"strings"  // String manipulation

	"github.com/RaY8118/VoteVision/internal/domain" // Importing domain models
	"github.com/RaY8118/VoteVision/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
	"gorm.io/gorm"               // GORM ORM library
)

// Request and Response structs
type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"` // Display name must be provided
	Email    string `json:"email" binding:"required"`     // Email must be provided
	Password string `json:"password" binding:"required"`  // Password must be provided
	Role     string `json:"role"`                         // Optional role, defaults to voter
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Token string `json:"access_token"` // JWT token
}

// UserResponse is the public view of a user
type UserResponse struct {
	UserID      string `json:"user_id"`       // 6-character user ID
	FullName    string `json:"full_name"`     // Display name
	Email       string `json:"email"`         // Email address
	Role        string `json:"role"`          // voter or admin
	HasFaceData bool   `json:"has_face_data"` // Whether a face is registered
}

// toUserResponse converts a domain user to its public view
func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:      u.UserID,        // User ID
		FullName:    u.FullName,      // Display name
		Email:       u.Email,         // Email
		Role:        u.Role,          // Role
		HasFaceData: u.HasFaceData(), // Face registration status
	}
}

// isValidEmail checks the email has a plausible address shape
func isValidEmail(email string) bool {
	matched, _ := regexp.MatchString(`^[^@\s]+@[^@\s]+\.[^@\s]+$`, email) // Basic address shape
	return matched                                                        // Return whether it matched
}

// isValidPassword checks if the password length is between 8 and 72 characters
func isValidPassword(password string) bool {
	return len(password) >= 8 && len(password) <= 72 // bcrypt input limit is 72 bytes
}

// RegisterHandler creates a new user account
func RegisterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate email and password
		if !isValidEmail(req.Email) {
			// If email is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		// Validate password length
		if !isValidPassword(req.Password) {
			// If password is invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be 8-72 characters"})
			return
		}
		// Role defaults to voter; only known roles are accepted
		role := req.Role
		if role == "" {
			role = domain.RoleVoter // Default role
		}
		if role != domain.RoleVoter && role != domain.RoleAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
			return
		}
		// Hash the password and create the user
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		// Create user with a collision-checked 6-character ID and lowercase email
		user := domain.User{
			UserID:   uniqueID(db, &domain.User{}, "user_id"), // Collision-checked short ID
			FullName: req.FullName,                            // Display name
			Email:    strings.ToLower(req.Email),              // Lowercase email to ensure uniqueness
			Password: string(hash),                            // Hashed password
			Role:     role,                                    // voter or admin
		}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// Duplicate email hits the unique index
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
				return
			}
			// Any other error is an internal failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
			return
		}
		// Return the created user
		c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": toUserResponse(&user)})
	}
}

// LoginHandler authenticates a user by email and password and returns a JWT token
func LoginHandler(db *gorm.DB, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.UserID, user.Role, jwtSecret)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// MeHandler returns the authenticated user's profile
func MeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("user_id = ?", userID).First(&user).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Return the user's public view
		c.JSON(http.StatusOK, gin.H{"user": toUserResponse(&user)})
	}
}
