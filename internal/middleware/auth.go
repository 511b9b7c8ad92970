package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"oralscan-backend/internal/models"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey = "userID"
	EmailKey  = "email"
)

const (
	devBypassToken = "dev-bypass-token"
	devUserID      = uint64(1)
	devEmail       = "dev@localhost"
)

type TokenVerifier interface {
	ValidateToken(token string) (*utils.Claims, error)
}

type UserLookup interface {
	FindByID(ctx context.Context, id uint64) (*models.User, error)
}

// AuthMiddleware accepts "Authorization: Bearer <token>" and rejects anything
// else with the same 401 body. The user must still exist.
func AuthMiddleware(tokens TokenVerifier, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c)
			return
		}

		// 1. Development builds map the fixed token to user 1, which must
		//    already exist (register once locally).
		if devBypassEnabled && tokenString == devBypassToken {
			user, err := users.FindByID(c.Request.Context(), devUserID)
			if err != nil {
				log.Printf("[Auth] dev token used but user %d is missing, register a user first: %v", devUserID, err)
				unauthorized(c)
				return
			}
			c.Set(UserIDKey, user.ID)
			c.Set(EmailKey, devEmail)
			c.Next()
			return
		}

		// 2. Signature, algorithm and expiry.
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			unauthorized(c)
			return
		}

		// 3. The account may have been deleted since the token was issued.
		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Printf("[Auth] token for user %d rejected: %v", claims.UserID, err)
			unauthorized(c)
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(EmailKey, user.Email)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Response{Success: false, Message: "Unauthorized"})
}

// CurrentUserID returns the authenticated user, or 0 outside the auth group.
func CurrentUserID(c *gin.Context) uint64 {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint64); ok {
			return id
		}
	}
	return 0
}
