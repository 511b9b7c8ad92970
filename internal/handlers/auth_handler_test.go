package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthRouter(users UserStore, tokens TokenIssuer, userID uint64) *gin.Engine {
	r := newTestRouter()
	h := NewAuthHandler(users, tokens)
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	me := r.Group("/api/auth", asUser(userID))
	me.GET("/me", h.Me)
	me.PUT("/me", h.UpdateProfile)
	me.PUT("/password", h.ChangePassword)
	me.PUT("/fcm-token", h.UpdateFCMToken)
	return r
}

func TestRegisterHidesPasswordHash(t *testing.T) {
	users := newMemUsers()
	r := newAuthRouter(users, utils.NewTokenManager("s", time.Hour), 0)

	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"name": "Dr. Ana", "email": "Ana@Clinic.test", "password": "secret1"})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret1")
	assert.NotContains(t, w.Body.String(), "password")

	u, err := users.FindByEmail(context.Background(), "ana@clinic.test")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("secret1", u.PasswordHash))
}

func TestRegisterDuplicateEmailIs409(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ana@clinic.test", "secret1")
	r := newAuthRouter(users, utils.NewTokenManager("s", time.Hour), 0)

	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"name": "Again", "email": "ana@clinic.test", "password": "secret2"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterValidation(t *testing.T) {
	r := newAuthRouter(newMemUsers(), utils.NewTokenManager("s", time.Hour), 0)
	w := doJSON(r, http.MethodPost, "/api/auth/register", gin.H{"name": "x", "email": "not-an-email", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	users := newMemUsers()
	u := seedUser(t, users, "ana@clinic.test", "secret1")
	tokens := utils.NewTokenManager("s", time.Hour)
	r := newAuthRouter(users, tokens, 0)

	w := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"email": "ana@clinic.test", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	claims, err := tokens.ValidateToken(data.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "ana@clinic.test", claims.Email)
}

func TestLoginWrongCredentials(t *testing.T) {
	users := newMemUsers()
	seedUser(t, users, "ana@clinic.test", "secret1")
	r := newAuthRouter(users, utils.NewTokenManager("s", time.Hour), 0)

	wrongPassword := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"email": "ana@clinic.test", "password": "nope"})
	unknownEmail := doJSON(r, http.MethodPost, "/api/auth/login", gin.H{"email": "bob@clinic.test", "password": "secret1"})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, decodeEnvelope(t, wrongPassword).Message, decodeEnvelope(t, unknownEmail).Message)
}

func TestProfileUpdateAndPasswordChange(t *testing.T) {
	users := newMemUsers()
	u := seedUser(t, users, "ana@clinic.test", "secret1")
	r := newAuthRouter(users, utils.NewTokenManager("s", time.Hour), u.ID)

	w := doJSON(r, http.MethodPut, "/api/auth/me", gin.H{"name": "Dr. Ana Lima"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dr. Ana Lima")

	w = doJSON(r, http.MethodPut, "/api/auth/password", gin.H{"currentPassword": "wrong", "newPassword": "secret2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/api/auth/password", gin.H{"currentPassword": "secret1", "newPassword": "secret2"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := users.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("secret2", stored.PasswordHash))
}

func TestMeForMissingUserIs404(t *testing.T) {
	r := newAuthRouter(newMemUsers(), utils.NewTokenManager("s", time.Hour), 42)
	assert.Equal(t, http.StatusNotFound, doJSON(r, http.MethodGet, "/api/auth/me", nil).Code)
}

func TestUpdateFCMToken(t *testing.T) {
	users := newMemUsers()
	u := seedUser(t, users, "ana@clinic.test", "secret1")
	r := newAuthRouter(users, utils.NewTokenManager("s", time.Hour), u.ID)

	w := doJSON(r, http.MethodPut, "/api/auth/fcm-token", gin.H{"token": "device-abc"})
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := users.FindByID(context.Background(), u.ID)
	assert.Equal(t, "device-abc", stored.FCMToken)
	assert.NotContains(t, doJSON(r, http.MethodGet, "/api/auth/me", nil).Body.String(), "device-abc")
}
