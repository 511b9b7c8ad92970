package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"oralscan-backend/internal/diagnosis"
	"oralscan-backend/internal/middleware"
	"oralscan-backend/internal/models"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PatientChecker confirms a patient belongs to the calling doctor.
type PatientChecker interface {
	Exists(ctx context.Context, doctorID, id uint64) (bool, error)
}

// analysisInput is the body of both POST /api/analyze and POST /api/scans.
type analysisInput struct {
	ImageBase64 string          `json:"imageBase64"`
	PatientID   *uint64         `json:"patientId"`
	History     json.RawMessage `json:"histopathologicalData"`
}

// bindAnalysisRequest validates the body and writes the error response itself
// when it returns false.
func bindAnalysisRequest(c *gin.Context, patients PatientChecker) (diagnosis.Request, bool) {
	// 1. Body must be JSON
	var input analysisInput
	if !bindJSON(c, &input) {
		return diagnosis.Request{}, false
	}

	// 2. Image: present, decodable, and a type the model accepts
	if input.ImageBase64 == "" {
		utils.APIError(c, http.StatusBadRequest, "Image is required", "imageBase64")
		return diagnosis.Request{}, false
	}
	img, err := diagnosis.DecodeImage(input.ImageBase64)
	if err != nil {
		utils.APIError(c, http.StatusBadRequest, "Invalid image", err.Error())
		return diagnosis.Request{}, false
	}

	// 3. History is optional, but when sent it must pass validation
	history, err := models.DecodeHistory(input.History)
	if err != nil {
		var fe *models.FieldError
		if errors.As(err, &fe) {
			utils.APIError(c, http.StatusBadRequest, "Invalid patient history: "+fe.Error(), fe.Path)
			return diagnosis.Request{}, false
		}
		utils.APIError(c, http.StatusBadRequest, "Invalid patient history", models.HistoryField)
		return diagnosis.Request{}, false
	}

	// 4. A linked patient must belong to the caller
	userID := middleware.CurrentUserID(c)
	if input.PatientID != nil {
		ok, err := patients.Exists(c.Request.Context(), userID, *input.PatientID)
		if err != nil {
			log.Printf("[Patient] lookup %d failed: %v", *input.PatientID, err)
			utils.APIError(c, http.StatusInternalServerError, "Failed to load patient", err.Error())
			return diagnosis.Request{}, false
		}
		if !ok {
			utils.APIError(c, http.StatusNotFound, "Patient not found", "patientId")
			return diagnosis.Request{}, false
		}
	}

	return diagnosis.Request{
		UserID:     userID,
		PatientID:  input.PatientID,
		Image:      img,
		History:    history,
		RawHistory: input.History,
	}, true
}

// bindJSON answers 413 for bodies over the size cap and 400 for anything else.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.APIError(c, http.StatusRequestEntityTooLarge, "Request body too large", "")
		return false
	}
	utils.APIError(c, http.StatusBadRequest, "Invalid input", err.Error())
	return false
}

// pathID reads a positive :id parameter, answering 400 otherwise.
func pathID(c *gin.Context) (uint64, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		utils.APIError(c, http.StatusBadRequest, "Invalid id", err.Error())
		return 0, false
	}
	return id, true
}
