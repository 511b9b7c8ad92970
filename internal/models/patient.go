package models

import "time"

type Patient struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`
	DoctorID       uint64    `gorm:"not null;index" json:"doctor_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Age            int       `json:"age"`
	Gender         string    `gorm:"size:10" json:"gender"`
	Phone          string    `gorm:"size:20" json:"phone"`
	TobaccoUse     string    `gorm:"size:10" json:"tobacco_use"`
	AlcoholUse     string    `gorm:"size:20" json:"alcohol_use"`
	MedicalHistory string    `gorm:"type:text" json:"medical_history"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Scans keep their row when the patient goes away; only the link is cleared.
	Scans []Scan `gorm:"foreignKey:PatientID;constraint:OnDelete:SET NULL" json:"scans,omitempty"`
}

// PatientInput is used for both create and update.
type PatientInput struct {
	Name           string `json:"name" binding:"required,max=100"`
	Age            int    `json:"age" binding:"gte=0,lte=130"`
	Gender         string `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Phone          string `json:"phone" binding:"max=20"`
	TobaccoUse     string `json:"tobacco_use" binding:"omitempty,oneof=Yes No Former"`
	AlcoholUse     string `json:"alcohol_use" binding:"omitempty,oneof=Never Occasional Regular Heavy"`
	MedicalHistory string `json:"medical_history"`
}

// Apply copies the input onto p, leaving ownership and ID alone.
func (in PatientInput) Apply(p *Patient) {
	p.Name = in.Name
	p.Age = in.Age
	p.Gender = in.Gender
	p.Phone = in.Phone
	p.TobaccoUse = in.TobaccoUse
	p.AlcoholUse = in.AlcoholUse
	p.MedicalHistory = in.MedicalHistory
}
