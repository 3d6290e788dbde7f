package api

import (
	"errors"   // Error inspection
	"io"       // Reading the uploaded image
	"net/http" // HTTP status codes
	"time"     // Session expiry

	"github.com/RaY8118/VoteVision/internal/domain" // Importing domain models
	"github.com/RaY8118/VoteVision/internal/face"   // Biometric matcher
	"github.com/RaY8118/VoteVision/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// readImageFile pulls the uploaded "image" form file out of the request.
// Returns false after writing the error response itself.
func readImageFile(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image") // The multipart image field
	if err != nil {
		// Missing or malformed upload
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return nil, false
	}
	f, err := fileHeader.Open() // Open the uploaded file
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return nil, false
	}
	defer f.Close()
	img, err := io.ReadAll(f) // Read the raw image bytes
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return nil, false
	}
	return img, true // Image bytes ready for extraction
}

// extractEmbedding runs the extractor and maps its failures: zero faces is a
// typed 400, anything else degrades to one opaque processing failure. This is
// the only place unexpected errors are flattened like this.
func extractEmbedding(c *gin.Context, extractor face.Extractor, img []byte) (face.Embedding, bool) {
	emb, err := extractor.Extract(c.Request.Context(), img) // Run the extraction pipeline
	if err != nil {
		// Zero detected faces is a caller-visible condition
		if errors.Is(err, face.ErrNoFaceDetected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No face found in the image"})
			return nil, false
		}
		// Log the underlying failure, report it opaquely
		logrus.WithFields(logrus.Fields{
			"error": err.Error(), // Error message
		}).Error("Face processing failed") // Log pipeline failure
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Face processing failed"})
		return nil, false
	}
	return emb, true // Embedding extracted
}

// RegisterFaceHandler registers (or replaces) the authenticated user's face
// embedding
func RegisterFaceHandler(db *gorm.DB, extractor face.Extractor) gin.HandlerFunc {
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
		img, ok := readImageFile(c) // Read the uploaded image
		if !ok {
			return // Error response already written
		}
		emb, ok := extractEmbedding(c, extractor, img) // Extract the embedding
		if !ok {
			return // Error response already written
		}
		// Store the embedding in its fixed binary encoding
		if err := db.Model(&user).Update("face_encoding", emb.Encode()).Error; err != nil {
			// If storing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save face data"})
			return
		}
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.UserID, // User ID
		}).Info("Face registered")
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Face registered successfully"})
	}
}

// VerifyFaceHandler matches a probe image against the authenticated user's
// stored embedding and on success issues a short-lived verification session
func VerifyFaceHandler(db *gorm.DB, extractor face.Extractor, tolerance float64, sessionTTL time.Duration) gin.HandlerFunc {
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
		// Verification needs a registered face to compare against
		if !user.HasFaceData() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No face registered for this user"})
			return
		}
		img, ok := readImageFile(c) // Read the uploaded image
		if !ok {
			return // Error response already written
		}
		probe, ok := extractEmbedding(c, extractor, img) // Extract the probe embedding
		if !ok {
			return // Error response already written
		}
		stored, err := face.Decode(user.FaceEncoding) // Decode the stored embedding
		if err != nil {
			// Stored bytes are unreadable: opaque processing failure
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Face processing failed"})
			return
		}
		// Compare the probe against the stored embedding within tolerance
		if !face.Matches(stored, probe, tolerance) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Face verification failed"})
			return
		}
		// Issue a verification session valid for the configured window
		session := domain.FaceVerificationSession{
			UserID:    user.UserID,                // Verified user
			ExpiresAt: time.Now().Add(sessionTTL), // End of the verification window
		}
		if err := db.Create(&session).Error; err != nil {
			// If persisting fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification session"})
			return
		}
		// Log the verification
		logrus.WithFields(logrus.Fields{
			"user_id":    user.UserID,       // User ID
			"expires_at": session.ExpiresAt, // Session expiry
		}).Info("Face verified")
		// Return the verification window
		c.JSON(http.StatusOK, gin.H{"verified": true, "expires_at": session.ExpiresAt})
	}
}

// FaceStatusHandler reports whether the authenticated user has a registered face
func FaceStatusHandler(db *gorm.DB) gin.HandlerFunc {
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
		// Return the face registration status
		c.JSON(http.StatusOK, gin.H{"user_id": user.UserID, "has_face_data": user.HasFaceData()})
	}
}

// FaceLoginHandler authenticates by face alone: the probe is compared against
// every stored embedding and the first user within tolerance wins
func FaceLoginHandler(db *gorm.DB, extractor face.Extractor, tolerance float64, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, ok := readImageFile(c) // Read the uploaded image
		if !ok {
			return // Error response already written
		}
		probe, ok := extractEmbedding(c, extractor, img) // Extract the probe embedding
		if !ok {
			return // Error response already written
		}
		// Fetch users that have a registered face, in stable order
		var users []domain.User
		if err := db.Where("face_encoding IS NOT NULL").Order("user_id asc").Find(&users).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		// Compare the probe against each stored embedding
		for i := range users {
			stored, err := face.Decode(users[i].FaceEncoding) // Decode the stored embedding
			if err != nil {
				continue // Skip unreadable encodings
			}
			// First user within tolerance wins
			if face.Matches(stored, probe, tolerance) {
				// Generate JWT token for the matched user
				token, err := utils.GenerateJWT(users[i].UserID, users[i].Role, jwtSecret)
				if err != nil {
					// If token generation fails, return internal server error
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
					return
				}
				// Log the face login
				logrus.WithFields(logrus.Fields{
					"user_id": users[i].UserID, // User ID
				}).Info("Face login")
				// Return the token in the response
				c.JSON(http.StatusOK, AuthResponse{Token: token})
				return
			}
		}
		// No stored embedding matched the probe
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	}
}
