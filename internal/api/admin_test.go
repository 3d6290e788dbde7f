package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/RaY8118/VoteVision/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersHandler(t *testing.T) {
	env := newTestEnv(t, false)
	_, adminToken := env.createUser(t, domain.RoleAdmin)
	_, voterToken := env.createUser(t, domain.RoleVoter)

	t.Run("voters are forbidden", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/admin/users", voterToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admins get the paginated public view", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/admin/users", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Len(t, body["users"], 2)
		assert.EqualValues(t, 2, body["total"])
		assert.EqualValues(t, 1, body["total_pages"])
		// Hashes and encodings never leave the server
		assert.NotContains(t, w.Body.String(), "password")
		assert.NotContains(t, w.Body.String(), "face_encoding")
	})
}

func TestUpdateUserRoleHandler(t *testing.T) {
	env := newTestEnv(t, false)
	_, adminToken := env.createUser(t, domain.RoleAdmin)
	voter, voterToken := env.createUser(t, domain.RoleVoter)

	t.Run("unknown role is rejected", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPut, "/admin/users/"+voter.UserID+"/role", adminToken, gin.H{"role": "root"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPut, "/admin/users/NOPE12/role", adminToken, gin.H{"role": domain.RoleAdmin})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("promotion takes effect on the next request", func(t *testing.T) {
		// The voter cannot reach admin routes yet
		w := env.doJSON(t, http.MethodGet, "/admin/users", voterToken, nil)
		require.Equal(t, http.StatusForbidden, w.Code)

		w = env.doJSON(t, http.MethodPut, "/admin/users/"+voter.UserID+"/role", adminToken, gin.H{"role": domain.RoleAdmin})
		require.Equal(t, http.StatusOK, w.Code)

		// The role check reads the database, so the old token now passes
		w = env.doJSON(t, http.MethodGet, "/admin/users", voterToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestListVotesHandler(t *testing.T) {
	env := newTestEnv(t, false)
	_, adminToken := env.createUser(t, domain.RoleAdmin)
	voterA, _ := env.createUser(t, domain.RoleVoter)
	voterB, _ := env.createUser(t, domain.RoleVoter)
	e1 := env.createElection(t, domain.StatusActive)
	e2 := env.createElection(t, domain.StatusActive)
	candidate := env.createCandidate(t, "Ledger Candidate")
	for i, v := range []struct {
		election string
		voter    string
	}{
		{e1.ElectionID, voterA.UserID},
		{e1.ElectionID, voterB.UserID},
		{e2.ElectionID, voterA.UserID},
	} {
		require.NoError(t, env.db.Create(&domain.Vote{
			VoteID:      "LEDG0" + string(rune('0'+i)),
			ElectionID:  v.election,
			VoterID:     v.voter,
			CandidateID: candidate.CandidateID,
			Timestamp:   time.Now(),
		}).Error)
	}

	t.Run("returns the full ledger", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/admin/votes", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 3, decodeBody(t, w)["total"])
	})

	t.Run("filters by election and voter", func(t *testing.T) {
		w := env.doJSON(t, http.MethodGet, "/admin/votes?election_id="+e1.ElectionID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decodeBody(t, w)["total"])

		w = env.doJSON(t, http.MethodGet, "/admin/votes?voter_id="+voterA.UserID, adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decodeBody(t, w)["total"])
	})
}
