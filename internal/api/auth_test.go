package api

import (
	"net/http"
	"testing"

	"github.com/RaY8118/VoteVision/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	env := newTestEnv(t, false)

	t.Run("creates a voter with a 6-character ID", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
			"full_name": "Ada Lovelace",
			"email":     "Ada@Example.com",
			"password":  "password123",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var user domain.User
		require.NoError(t, env.db.Where("email = ?", "ada@example.com").First(&user).Error)
		assert.Len(t, user.UserID, 6)
		assert.Equal(t, domain.RoleVoter, user.Role)
		// Password is stored hashed, email lowercased
		assert.NotEqual(t, "password123", user.Password)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
			"full_name": "Ada Again",
			"email":     "ada@example.com",
			"password":  "password123",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("rejects malformed email and short password", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
			"full_name": "Bad Email",
			"email":     "not-an-email",
			"password":  "password123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = env.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
			"full_name": "Short Password",
			"email":     "short@example.com",
			"password":  "short",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/register", "", gin.H{
			"full_name": "Strange Role",
			"email":     "role@example.com",
			"password":  "password123",
			"role":      "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t, false)
	user, _ := env.createUser(t, domain.RoleVoter)

	t.Run("valid credentials return a token", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
			"email":    user.Email,
			"password": "password123",
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decodeBody(t, w)["access_token"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
			"email":    user.Email,
			"password": "wrong-password",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email is unauthorized", func(t *testing.T) {
		w := env.doJSON(t, http.MethodPost, "/auth/login", "", gin.H{
			"email":    "nobody@example.com",
			"password": "password123",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMeHandler(t *testing.T) {
	env := newTestEnv(t, false)
	user, token := env.createUser(t, domain.RoleVoter)

	w := env.doJSON(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	me := body["user"].(map[string]any)
	assert.Equal(t, user.UserID, me["user_id"])
	assert.Equal(t, user.Email, me["email"])
	// The hash never leaves the server
	assert.NotContains(t, me, "password")

	// Missing token is unauthorized
	w = env.doJSON(t, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
