package api

import (
	"net/http"
	"testing"

	"github.com/RaY8118/VoteVision/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateCRUD(t *testing.T) {
	env := newTestEnv(t, false)
	_, adminToken := env.createUser(t, domain.RoleAdmin)
	_, voterToken := env.createUser(t, domain.RoleVoter)

	t.Run("admin creates a candidate with a 6-character ID", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/candidates", adminToken, gin.H{
			"name":      "Jane Doe",
			"party":     "Progress Party",
			"manifesto": "Build more parks",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var candidate domain.Candidate
		require.NoError(t, env.db.Where("name = ?", "Jane Doe").First(&candidate).Error)
		assert.Len(t, candidate.CandidateID, 6)
	})

	t.Run("voters cannot create candidates", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/candidates", voterToken, gin.H{
			"name":      "Nope",
			"party":     "P",
			"manifesto": "m",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("everyone authenticated can list and get", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/candidates", voterToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["candidates"], 1)

		var candidate domain.Candidate
		require.NoError(t, env.db.First(&candidate).Error)
		w = env.doJSON(t, http.MethodGet, "/candidates/"+candidate.CandidateID, voterToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.doJSON(t, http.MethodGet, "/candidates/NOPE12", voterToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update touches only the mutable fields", func(t *testing.T) {
		var candidate domain.Candidate
		require.NoError(t, env.db.First(&candidate).Error)
		w := env.doJSON(t, http.MethodPut, "/candidates/"+candidate.CandidateID, adminToken, gin.H{
			"name":      "Jane Q. Doe",
			"party":     "Progress Party",
			"manifesto": "Build even more parks",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var got domain.Candidate
		require.NoError(t, env.db.Where("candidate_id = ?", candidate.CandidateID).First(&got).Error)
		assert.Equal(t, "Jane Q. Doe", got.Name)
		assert.Equal(t, candidate.CandidateID, got.CandidateID)
	})

	t.Run("delete removes the candidate and its registrations", func(t *testing.T) {
		var candidate domain.Candidate
		require.NoError(t, env.db.First(&candidate).Error)
		election := env.createElection(t, domain.StatusUpcoming)
		env.registerCandidate(t, election.ElectionID, candidate.CandidateID)

		w := env.doJSON(t, http.MethodDelete, "/candidates/"+candidate.CandidateID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var count int64
		env.db.Model(&domain.Candidate{}).Where("candidate_id = ?", candidate.CandidateID).Count(&count)
		assert.Zero(t, count)
		env.db.Model(&domain.ElectionCandidate{}).Where("candidate_id = ?", candidate.CandidateID).Count(&count)
		assert.Zero(t, count)
	})
}
