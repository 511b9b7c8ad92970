//go:build !devauth

package middleware

import (
	"testing"
	"time"

	"oralscan-backend/pkg/utils"
)

func TestDevTokenRejectedInDefaultBuild(t *testing.T) {
	r := newAuthRouter(utils.NewTokenManager("secret", time.Hour), fakeUsers{})
	assertUnauthorized(t, doGet(r, "Bearer "+devBypassToken))
}
