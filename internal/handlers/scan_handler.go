package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"oralscan-backend/internal/diagnosis"
	"oralscan-backend/internal/middleware"
	"oralscan-backend/internal/models"
	"oralscan-backend/internal/repository"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type ScanReader interface {
	ListByUser(ctx context.Context, userID uint64, patientID *uint64) ([]models.Scan, error)
	FindForUser(ctx context.Context, userID, id uint64) (*models.Scan, error)
}

type ScanSubmitter interface {
	Submit(ctx context.Context, req diagnosis.Request) (*models.Scan, error)
}

type ScanHandler struct {
	scans    ScanReader
	async    ScanSubmitter
	patients PatientChecker
}

func NewScanHandler(scans ScanReader, async ScanSubmitter, patients PatientChecker) *ScanHandler {
	return &ScanHandler{scans: scans, async: async, patients: patients}
}

// ListScans returns the caller's scans, optionally narrowed by ?patientId=.
func (h *ScanHandler) ListScans(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	var patientID *uint64
	if raw := c.Query("patientId"); raw != "" {
		id, err := utils.ParseID(raw)
		if err != nil {
			utils.APIError(c, http.StatusBadRequest, "Invalid patientId", err.Error())
			return
		}
		patientID = &id
	}

	scans, err := h.scans.ListByUser(c.Request.Context(), userID, patientID)
	if err != nil {
		log.Printf("[Scan] list for user %d: %v", userID, err)
		utils.APIError(c, http.StatusInternalServerError, "Failed to load scans", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Scans", scans)
}

// CreateScan stores the scan as PROCESSING and answers before the model does.
func (h *ScanHandler) CreateScan(c *gin.Context) {
	req, ok := bindAnalysisRequest(c, h.patients)
	if !ok {
		return
	}

	// The row is stored as PROCESSING before Submit returns; the client
	// polls GET /api/scans/:id (or waits for the push) for the result.
	scan, err := h.async.Submit(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, diagnosis.ErrShuttingDown) {
			utils.APIError(c, http.StatusServiceUnavailable, "Server is shutting down", err.Error())
			return
		}
		log.Printf("[Scan] submit for user %d: %v", req.UserID, err)
		utils.APIError(c, http.StatusInternalServerError, "Failed to create scan", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusAccepted, true, "Scan is being analyzed", scan)
}

func (h *ScanHandler) GetScan(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)

	scan, err := h.scans.FindForUser(c.Request.Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			utils.APIError(c, http.StatusNotFound, "Scan not found", "")
			return
		}
		utils.APIError(c, http.StatusInternalServerError, "Failed to load scan", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Scan", scan)
}
