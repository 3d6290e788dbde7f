package config

import (
	"os"      // For environment variables
	"strconv" // For string to int/float conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort          string        // Application port
	DBUser           string        // Database user
	DBPassword       string        // Database password
	DBHost           string        // Database host
	DBPort           string        // Database port
	DBName           string        // Database name
	JWTSecret        string        // JWT secret key
	RedisAddr        string        // Redis server address
	RedisPass        string        // Redis password
	RedisDB          int           // Redis database number
	FaceServiceURL   string        // Base URL of the face embedding service
	FaceTolerance    float64       // Maximum embedding distance for a match
	FaceSessionTTL   time.Duration // Lifetime of a face verification session
	RequireFaceCheck bool          // Require a valid face verification before voting
	IsProd           bool          // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	// Face match tolerance defaults to the face_recognition production default
	tolerance := 0.6
	if v, err := strconv.ParseFloat(os.Getenv("FACE_TOLERANCE"), 64); err == nil && v > 0 {
		tolerance = v // Override from environment
	}
	// Verification sessions default to a 5 minute window
	sessionTTL := 5 * time.Minute
	if v, err := strconv.Atoi(os.Getenv("FACE_SESSION_TTL_MINUTES")); err == nil && v > 0 {
		sessionTTL = time.Duration(v) * time.Minute // Override from environment
	}
	return &Config{
		AppPort:          os.Getenv("APP_PORT"),                            // Application port
		DBUser:           os.Getenv("DB_USER"),                             // Database user
		DBPassword:       os.Getenv("DB_PASSWORD"),                         // Database password
		DBHost:           os.Getenv("DB_HOST"),                             // Database host
		DBPort:           os.Getenv("DB_PORT"),                             // Database port
		DBName:           os.Getenv("DB_NAME"),                             // Database name
		JWTSecret:        os.Getenv("JWT_SECRET"),                          // JWT secret key
		RedisAddr:        os.Getenv("REDIS_ADDR"),                          // Redis server address
		RedisPass:        os.Getenv("REDIS_PASS"),                          // Redis password
		RedisDB:          redisDB,                                          // Redis database number
		FaceServiceURL:   os.Getenv("FACE_SERVICE_URL"),                    // Face embedding service URL
		FaceTolerance:    tolerance,                                        // Face match tolerance
		FaceSessionTTL:   sessionTTL,                                       // Verification session lifetime
		RequireFaceCheck: os.Getenv("REQUIRE_FACE_VERIFICATION") == "true", // Gate voting on face verification
		IsProd:           os.Getenv("IS_PROD") == "true",                   // Is production environment
	}
}
