package handlers

import (
	"context"
	"errors"
	"net/http"

	"oralscan-backend/internal/middleware"
	"oralscan-backend/internal/models"
	"oralscan-backend/internal/repository"
	"oralscan-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PatientStore scopes every call by the owning doctor.
type PatientStore interface {
	Create(ctx context.Context, patient *models.Patient) error
	ListByDoctor(ctx context.Context, doctorID uint64) ([]models.Patient, error)
	FindForDoctor(ctx context.Context, doctorID, id uint64) (*models.Patient, error)
	Update(ctx context.Context, doctorID, id uint64, in models.PatientInput) (*models.Patient, error)
	Delete(ctx context.Context, doctorID, id uint64) error
}

type ScanLister interface {
	ListByUser(ctx context.Context, userID uint64, patientID *uint64) ([]models.Scan, error)
}

type PatientHandler struct {
	patients PatientStore
	scans    ScanLister
}

func NewPatientHandler(patients PatientStore, scans ScanLister) *PatientHandler {
	return &PatientHandler{patients: patients, scans: scans}
}

func (h *PatientHandler) AddPatient(c *gin.Context) {
	var input models.PatientInput
	if !bindJSON(c, &input) {
		return
	}

	patient := models.Patient{DoctorID: middleware.CurrentUserID(c)}
	input.Apply(&patient)

	if err := h.patients.Create(c.Request.Context(), &patient); err != nil {
		utils.APIError(c, http.StatusInternalServerError, "Failed to save patient", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "Patient added", patient)
}

func (h *PatientHandler) GetMyPatients(c *gin.Context) {
	patients, err := h.patients.ListByDoctor(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		utils.APIError(c, http.StatusInternalServerError, "Failed to load patients", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "My patients", patients)
}

func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	patient, err := h.patients.FindForDoctor(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Patient", patient)
}

// UpdatePatient only touches rows owned by the caller; anything else is 404.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var input models.PatientInput
	if !bindJSON(c, &input) {
		return
	}

	patient, err := h.patients.Update(c.Request.Context(), middleware.CurrentUserID(c), id, input)
	if err != nil {
		patientError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Patient updated", patient)
}

func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.patients.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		patientError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Patient deleted", nil)
}

// GetPatientScans lists the scans linked to one of the caller's patients.
func (h *PatientHandler) GetPatientScans(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	userID := middleware.CurrentUserID(c)

	if _, err := h.patients.FindForDoctor(c.Request.Context(), userID, id); err != nil {
		patientError(c, err)
		return
	}
	scans, err := h.scans.ListByUser(c.Request.Context(), userID, &id)
	if err != nil {
		utils.APIError(c, http.StatusInternalServerError, "Failed to load scans", err.Error())
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "Patient scans", scans)
}

func patientError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		utils.APIError(c, http.StatusNotFound, "Patient not found", "")
		return
	}
	utils.APIError(c, http.StatusInternalServerError, "Patient operation failed", err.Error())
}
