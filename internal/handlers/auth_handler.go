package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"oralscan-backend/internal/middleware"
	"oralscan-backend/internal/models"
	"oralscan-backend/internal/repository"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint64) (*models.User, error)
	UpdateName(ctx context.Context, id uint64, name string) error
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	UpdateFCMToken(ctx context.Context, id uint64, token string) error
}

type TokenIssuer interface {
	GenerateToken(userID uint64, email string) (string, error)
}

type AuthHandler struct {
	users  UserStore
	tokens TokenIssuer
}

func NewAuthHandler(users UserStore, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (h *AuthHandler) Register(c *gin.Context) {
	// 1. Validate the JSON input
	var input models.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	// 2. Hash the password, the plain text is never stored
	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		utils.APIError(c, http.StatusInternalServerError, "Failed to process password", "")
		return
	}

	// 3. Save the user; a unique index on email catches duplicates
	user := models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        normalizeEmail(input.Email),
		PasswordHash: hashedPassword,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			utils.APIError(c, http.StatusConflict, "Email is already registered", "email")
			return
		}
		log.Printf("[Auth] register %s: %v", user.Email, err)
		utils.APIError(c, http.StatusInternalServerError, "Failed to register", err.Error())
		return
	}

	utils.APIResponse(c, http.StatusCreated, true, "Registration successful", user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	// 1. Look up by email and compare the password. Both failures get the
	//    same answer so the endpoint does not reveal which emails exist.
	user, err := h.users.FindByEmail(c.Request.Context(), normalizeEmail(input.Email))
	if err != nil || !utils.CheckPassword(input.Password, user.PasswordHash) {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			log.Printf("[Auth] login lookup: %v", err)
		}
		utils.APIError(c, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}

	// 2. Issue the JWT
	token, err := h.tokens.GenerateToken(user.ID, user.Email)
	if err != nil {
		utils.APIError(c, http.StatusInternalServerError, "Failed to issue token", "")
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "Login successful", gin.H{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.FindByID(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		userError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Profile", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var input models.UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	userID := middleware.CurrentUserID(c)

	if err := h.users.UpdateName(c.Request.Context(), userID, strings.TrimSpace(input.Name)); err != nil {
		userError(c, err)
		return
	}
	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		userError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Profile updated", user)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var input models.ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}
	userID := middleware.CurrentUserID(c)

	user, err := h.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		userError(c, err)
		return
	}
	if !utils.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		utils.APIError(c, http.StatusBadRequest, "Current password is incorrect", "currentPassword")
		return
	}

	hash, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		utils.APIError(c, http.StatusInternalServerError, "Failed to process password", "")
		return
	}
	if err := h.users.UpdatePassword(c.Request.Context(), userID, hash); err != nil {
		userError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Password changed", nil)
}

// UpdateFCMToken registers the device that receives scan pushes. An empty
// token unregisters it.
func (h *AuthHandler) UpdateFCMToken(c *gin.Context) {
	var input models.FCMTokenInput
	if !bindJSON(c, &input) {
		return
	}
	if err := h.users.UpdateFCMToken(c.Request.Context(), middleware.CurrentUserID(c), strings.TrimSpace(input.Token)); err != nil {
		userError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Device token saved", nil)
}

func userError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.APIError(c, http.StatusNotFound, "User not found", "")
		return
	}
	utils.APIError(c, http.StatusInternalServerError, "User operation failed", err.Error())
}
