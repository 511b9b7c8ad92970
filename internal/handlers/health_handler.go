package handlers

import (
	"context"
	"net/http"
	"time"

	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	utils.APIResponse(c, http.StatusOK, true, "ok", nil)
}

// Readyz fails while the database is unreachable.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		utils.APIError(c, http.StatusServiceUnavailable, "database unavailable", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "ready", nil)
}
