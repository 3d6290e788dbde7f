package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RaY8118/VoteVision/internal/domain"
	"github.com/RaY8118/VoteVision/internal/face"
	"github.com/RaY8118/VoteVision/internal/middleware"
	"github.com/RaY8118/VoteVision/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// stubExtractor returns a fixed embedding (or error) regardless of the image,
// standing in for the external face service
type stubExtractor struct {
	emb face.Embedding
	err error
}

func (s *stubExtractor) Extract(_ context.Context, _ []byte) (face.Embedding, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.emb, nil
}

// testEnv is one isolated server instance: in-memory SQLite, in-process
// redis, and the full route table from cmd/server
type testEnv struct {
	db        *gorm.DB
	rdb       *redis.Client
	router    *gin.Engine
	extractor *stubExtractor
	userSeq   int
}

// newTestEnv builds a test environment. requireFaceCheck gates voting on a
// valid verification session, matching the server flag.
func newTestEnv(t *testing.T, requireFaceCheck bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Candidate{},
		&domain.Election{},
		&domain.ElectionCandidate{},
		&domain.Vote{},
		&domain.FaceVerificationSession{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	extractor := &stubExtractor{emb: face.Embedding{0.1, 0.2, 0.3}}
	env := &testEnv{db: db, rdb: rdb, extractor: extractor}

	r := gin.New()
	r.POST("/auth/register", RegisterHandler(db))
	r.POST("/auth/login", LoginHandler(db, testJWTSecret))
	r.POST("/auth/login/face", FaceLoginHandler(db, extractor, face.DefaultTolerance, testJWTSecret))

	authGroup := r.Group("/auth")
	authGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	authGroup.GET("/me", MeHandler(db))
	authGroup.POST("/register/face", RegisterFaceHandler(db, extractor))
	authGroup.POST("/face/verify", VerifyFaceHandler(db, extractor, face.DefaultTolerance, 5*time.Minute))
	authGroup.GET("/face-status", FaceStatusHandler(db))

	electionGroup := r.Group("/elections")
	electionGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	electionGroup.GET("", ListElectionsHandler(db, rdb))
	electionGroup.GET("/:id", GetElectionHandler(db, rdb))
	electionGroup.GET("/:id/candidates", ListElectionCandidatesHandler(db, rdb))
	electionGroup.GET("/:id/results", ResultsHandler(db, rdb))
	electionGroup.POST("/:id/vote", CastVoteHandler(db, rdb, requireFaceCheck))

	electionAdmin := electionGroup.Group("")
	electionAdmin.Use(middleware.AdminOnlyMiddleware(db))
	electionAdmin.POST("", CreateElectionHandler(db, rdb))
	electionAdmin.PUT("/:id", UpdateElectionHandler(db, rdb))
	electionAdmin.DELETE("/:id", DeleteElectionHandler(db, rdb))
	electionAdmin.POST("/:id/start", StartElectionHandler(db, rdb))
	electionAdmin.POST("/:id/end", EndElectionHandler(db, rdb))
	electionAdmin.POST("/:id/candidates/:candidateId", AddElectionCandidateHandler(db, rdb))
	electionAdmin.DELETE("/:id/candidates/:candidateId", RemoveElectionCandidateHandler(db, rdb))

	candidateGroup := r.Group("/candidates")
	candidateGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret))
	candidateGroup.GET("", ListCandidatesHandler(db, rdb))
	candidateGroup.GET("/:id", GetCandidateHandler(db))

	candidateAdmin := candidateGroup.Group("")
	candidateAdmin.Use(middleware.AdminOnlyMiddleware(db))
	candidateAdmin.POST("", CreateCandidateHandler(db, rdb))
	candidateAdmin.PUT("/:id", UpdateCandidateHandler(db, rdb))
	candidateAdmin.DELETE("/:id", DeleteCandidateHandler(db, rdb))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(testJWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", ListUsersHandler(db, rdb))
	adminGroup.PUT("/users/:id/role", UpdateUserRoleHandler(db, rdb))
	adminGroup.GET("/votes", ListVotesHandler(db, rdb))

	env.router = r
	return env
}

// createUser inserts a user directly and returns it with a bearer token
func (e *testEnv) createUser(t *testing.T, role string) (domain.User, string) {
	t.Helper()
	e.userSeq++
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := domain.User{
		UserID:   uniqueID(e.db, &domain.User{}, "user_id"),
		FullName: fmt.Sprintf("Test User %d", e.userSeq),
		Email:    fmt.Sprintf("user%d@example.com", e.userSeq),
		Password: string(hash),
		Role:     role,
	}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := utils.GenerateJWT(user.UserID, user.Role, testJWTSecret)
	require.NoError(t, err)
	return user, token
}

// createElection inserts an election directly in the given status
func (e *testEnv) createElection(t *testing.T, status string) domain.Election {
	t.Helper()
	election := domain.Election{
		ElectionID:  uniqueID(e.db, &domain.Election{}, "election_id"),
		Title:       "General Election",
		Description: "Test election",
		StartDate:   time.Now(),
		EndDate:     time.Now().Add(24 * time.Hour),
		Status:      status,
	}
	require.NoError(t, e.db.Create(&election).Error)
	return election
}

// createCandidate inserts a candidate directly
func (e *testEnv) createCandidate(t *testing.T, name string) domain.Candidate {
	t.Helper()
	candidate := domain.Candidate{
		CandidateID: uniqueID(e.db, &domain.Candidate{}, "candidate_id"),
		Name:        name,
		Party:       "Test Party",
		Manifesto:   "A manifesto",
	}
	require.NoError(t, e.db.Create(&candidate).Error)
	return candidate
}

// registerCandidate links a candidate into an election directly
func (e *testEnv) registerCandidate(t *testing.T, electionID, candidateID string) {
	t.Helper()
	require.NoError(t, e.db.Create(&domain.ElectionCandidate{
		ElectionID:  electionID,
		CandidateID: candidateID,
	}).Error)
}

// doJSON performs a JSON request with an optional bearer token
func (e *testEnv) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doImage performs a multipart upload of an "image" field with a bearer token
func (e *testEnv) doImage(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "face.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeBody unmarshals a response body into a map for assertions
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
