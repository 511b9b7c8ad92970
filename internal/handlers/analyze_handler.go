package handlers

import (
	"context"
	"log"
	"net/http"

	"oralscan-backend/internal/diagnosis"
	"oralscan-backend/internal/models"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type Analyzer interface {
	Analyze(ctx context.Context, req diagnosis.Request) (*diagnosis.Outcome, error)
}

type AnalyzeHandler struct {
	analyzer Analyzer
	patients PatientChecker
}

func NewAnalyzeHandler(analyzer Analyzer, patients PatientChecker) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer, patients: patients}
}

// analyzeResponse is flat, not wrapped in the usual envelope.
type analyzeResponse struct {
	models.AnalysisResult
	ScanID uint64 `json:"scanId,omitempty"`
}

// Analyze runs the whole pipeline inside the request and returns the result.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	req, ok := bindAnalysisRequest(c, h.patients)
	if !ok {
		return
	}

	out, err := h.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		log.Printf("[Analyze] user %d: %v", req.UserID, err)
		utils.APIError(c, http.StatusInternalServerError, "Analysis failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{AnalysisResult: out.AnalysisResult, ScanID: out.ScanID})
}
