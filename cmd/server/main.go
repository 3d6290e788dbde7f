package main

import (
	"context" // context package is needed for Redis operations
	"log"     // log package is needed for logging

	"github.com/RaY8118/VoteVision/internal/api"        // Custom package for API handlers
	"github.com/RaY8118/VoteVision/internal/config"     // Custom package for configuration
	"github.com/RaY8118/VoteVision/internal/face"       // Custom package for face matching
	"github.com/RaY8118/VoteVision/internal/middleware" // Custom package for middleware

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database.
	// TranslateError surfaces unique-index violations as gorm.ErrDuplicatedKey,
	// which the handlers map to conflicts.
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Setup the face embedding extractor
	extractor := face.NewHTTPExtractor(cfg.FaceServiceURL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public auth routes
	r.POST("/auth/register", api.RegisterHandler(db))                                             // Registration endpoint
	r.POST("/auth/login", api.LoginHandler(db, cfg.JWTSecret))                                    // Password login endpoint
	r.POST("/auth/login/face", api.FaceLoginHandler(db, extractor, cfg.FaceTolerance, cfg.JWTSecret)) // Face login endpoint

	// Authenticated account routes (protected by JWT)
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret)) // Protect with JWT middleware
	authGroup.GET("/me", api.MeHandler(db))                    // Current user endpoint
	authGroup.POST("/register/face", api.RegisterFaceHandler(db, extractor))
	authGroup.POST("/face/verify", api.VerifyFaceHandler(db, extractor, cfg.FaceTolerance, cfg.FaceSessionTTL))
	authGroup.GET("/face-status", api.FaceStatusHandler(db)) // Face registration status endpoint

	// Election routes (protected by JWT)
	electionGroup := r.Group("/elections")
	electionGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret)) // Protect with JWT middleware
	electionGroup.GET("", api.ListElectionsHandler(db, redisClient))
	electionGroup.GET("/:id", api.GetElectionHandler(db, redisClient))
	electionGroup.GET("/:id/candidates", api.ListElectionCandidatesHandler(db, redisClient))
	electionGroup.GET("/:id/results", api.ResultsHandler(db, redisClient))
	electionGroup.POST("/:id/vote", api.CastVoteHandler(db, redisClient, cfg.RequireFaceCheck)) // Vote endpoint

	// Election administration routes (protected, admin only)
	electionAdmin := electionGroup.Group("")
	electionAdmin.Use(middleware.AdminOnlyMiddleware(db)) // Protect with AdminOnly middleware
	electionAdmin.POST("", api.CreateElectionHandler(db, redisClient))
	electionAdmin.PUT("/:id", api.UpdateElectionHandler(db, redisClient))
	electionAdmin.DELETE("/:id", api.DeleteElectionHandler(db, redisClient))
	electionAdmin.POST("/:id/start", api.StartElectionHandler(db, redisClient))
	electionAdmin.POST("/:id/end", api.EndElectionHandler(db, redisClient))
	electionAdmin.POST("/:id/candidates/:candidateId", api.AddElectionCandidateHandler(db, redisClient))
	electionAdmin.DELETE("/:id/candidates/:candidateId", api.RemoveElectionCandidateHandler(db, redisClient))

	// Candidate routes (protected by JWT)
	candidateGroup := r.Group("/candidates")
	candidateGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret)) // Protect with JWT middleware
	candidateGroup.GET("", api.ListCandidatesHandler(db, redisClient))
	candidateGroup.GET("/:id", api.GetCandidateHandler(db))

	// Candidate administration routes (protected, admin only)
	candidateAdmin := candidateGroup.Group("")
	candidateAdmin.Use(middleware.AdminOnlyMiddleware(db)) // Protect with AdminOnly middleware
	candidateAdmin.POST("", api.CreateCandidateHandler(db, redisClient))
	candidateAdmin.PUT("/:id", api.UpdateCandidateHandler(db, redisClient))
	candidateAdmin.DELETE("/:id", api.DeleteCandidateHandler(db, redisClient))

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))            // List users endpoint
	adminGroup.PUT("/users/:id/role", api.UpdateUserRoleHandler(db, redisClient)) // Role update endpoint
	adminGroup.GET("/votes", api.ListVotesHandler(db, redisClient))            // Vote ledger audit endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
