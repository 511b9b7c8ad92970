package repository

import (
	"context"
	"fmt"

	"oralscan-backend/internal/models"

	"gorm.io/gorm"
)

// PatientRepository scopes every query to the owning doctor.
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

func (r *PatientRepository) Create(ctx context.Context, patient *models.Patient) error {
	if err := r.db.WithContext(ctx).Create(patient).Error; err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (r *PatientRepository) ListByDoctor(ctx context.Context, doctorID uint64) ([]models.Patient, error) {
	patients := []models.Patient{}
	err := r.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("created_at desc").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

func (r *PatientRepository) FindForDoctor(ctx context.Context, doctorID, id uint64) (*models.Patient, error) {
	var patient models.Patient
	err := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		First(&patient).Error
	if err != nil {
		return nil, translate(err, "find patient")
	}
	return &patient, nil
}

// Update only touches a row whose doctor_id matches; anything else is ErrNotFound.
func (r *PatientRepository) Update(ctx context.Context, doctorID, id uint64, in models.PatientInput) (*models.Patient, error) {
	res := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Updates(map[string]interface{}{
			"name":            in.Name,
			"age":             in.Age,
			"gender":          in.Gender,
			"phone":           in.Phone,
			"tobacco_use":     in.TobaccoUse,
			"alcohol_use":     in.AlcoholUse,
			"medical_history": in.MedicalHistory,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update patient: %w", res.Error)
	}
	// Zero rows can also mean "nothing changed" on MySQL; the scoped reload decides.
	return r.FindForDoctor(ctx, doctorID, id)
}

func (r *PatientRepository) Delete(ctx context.Context, doctorID, id uint64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Delete(&models.Patient{})
	if res.Error != nil {
		return fmt.Errorf("delete patient: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists is a cheap ownership probe used before linking a scan.
func (r *PatientRepository) Exists(ctx context.Context, doctorID, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Patient{}).
		Where("id = ? AND doctor_id = ?", id, doctorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("probe patient: %w", err)
	}
	return count > 0, nil
}
