package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ScanProcessing = "PROCESSING"
	ScanCompleted  = "COMPLETED"
	ScanFailed     = "FAILED"
)

const (
	RiskLow     = "LOW"
	RiskMedium  = "MEDIUM"
	RiskHigh    = "HIGH"
	RiskUnknown = "UNKNOWN"
)

type Scan struct {
	ID        uint64  `gorm:"primaryKey" json:"id"`
	UserID    uint64  `gorm:"not null;index" json:"user_id"`
	PatientID *uint64 `gorm:"index" json:"patient_id,omitempty"` // NULL when not linked

	// ImageURL holds either a remote URL or an inline data: URL.
	ImageURL string `gorm:"type:text" json:"image_url,omitempty"`

	// PatientHistory is stored exactly as submitted.
	PatientHistory datatypes.JSON `json:"patient_history,omitempty"`

	Status       string    `gorm:"size:20;not null;default:'PROCESSING';index" json:"status"`
	Diagnosis    string    `gorm:"type:text" json:"diagnosis,omitempty"`
	Confidence   int       `json:"confidence"`
	RiskLevel    string    `gorm:"size:10" json:"risk_level,omitempty"`
	RawAnalysis  string    `gorm:"type:text" json:"raw_analysis,omitempty"`
	ErrorMessage string    `gorm:"size:500" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsFinal reports whether the scan has left PROCESSING.
func (s *Scan) IsFinal() bool {
	return s.Status == ScanCompleted || s.Status == ScanFailed
}

// AnalysisResult is what the model response parses into.
type AnalysisResult struct {
	Analysis    string `json:"analysis"`
	Confidence  int    `json:"confidence"`
	Risk        string `json:"risk"`
	RawAnalysis string `json:"rawAnalysis"`
}

// ApplyResult moves a parsed result onto the scan columns.
func (s *Scan) ApplyResult(r AnalysisResult) {
	s.Diagnosis = r.Analysis
	s.Confidence = r.Confidence
	s.RiskLevel = r.Risk
	s.RawAnalysis = r.RawAnalysis
}
