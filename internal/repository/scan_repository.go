package repository

import (
	"context"
	"fmt"
	"unicode/utf8"

	"oralscan-backend/internal/models"

	"gorm.io/gorm"
)

type ScanRepository struct {
	db *gorm.DB
}

func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

func (r *ScanRepository) Create(ctx context.Context, scan *models.Scan) error {
	if err := r.db.WithContext(ctx).Create(scan).Error; err != nil {
		return fmt.Errorf("create scan: %w", err)
	}
	return nil
}

// Record stores a finished synchronous analysis.
func (r *ScanRepository) Record(ctx context.Context, scan *models.Scan) error {
	return r.Create(ctx, scan)
}

// ListByUser returns the user's scans, newest first. A non-nil patientID narrows
// the list to that patient.
func (r *ScanRepository) ListByUser(ctx context.Context, userID uint64, patientID *uint64) ([]models.Scan, error) {
	scans := []models.Scan{}
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if patientID != nil {
		q = q.Where("patient_id = ?", *patientID)
	}
	// The inline image can be megabytes; only GET /api/scans/:id returns it.
	if err := q.Omit("image_url").Order("created_at desc").Find(&scans).Error; err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return scans, nil
}

func (r *ScanRepository) FindForUser(ctx context.Context, userID, id uint64) (*models.Scan, error) {
	var scan models.Scan
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&scan).Error
	if err != nil {
		return nil, translate(err, "find scan")
	}
	return &scan, nil
}

func (r *ScanRepository) FindByID(ctx context.Context, id uint64) (*models.Scan, error) {
	var scan models.Scan
	if err := r.db.WithContext(ctx).First(&scan, id).Error; err != nil {
		return nil, translate(err, "find scan")
	}
	return &scan, nil
}

// Complete moves a PROCESSING scan to COMPLETED.
func (r *ScanRepository) Complete(ctx context.Context, id uint64, result models.AnalysisResult) error {
	return r.finalize(ctx, id, map[string]interface{}{
		"status":       models.ScanCompleted,
		"diagnosis":    result.Analysis,
		"confidence":   result.Confidence,
		"risk_level":   result.Risk,
		"raw_analysis": result.RawAnalysis,
	})
}

// maxErrorMessage matches the size:500 column on models.Scan.
const maxErrorMessage = 500

// Fail moves a PROCESSING scan to FAILED.
func (r *ScanRepository) Fail(ctx context.Context, id uint64, reason string) error {
	return r.finalize(ctx, id, map[string]interface{}{
		"status":        models.ScanFailed,
		"error_message": truncateUTF8(reason, maxErrorMessage),
	})
}

// finalize is a compare-and-set on status: only a PROCESSING row is updated,
// so a scan transitions at most once.
func (r *ScanRepository) finalize(ctx context.Context, id uint64, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Scan{}).
		Where("id = ? AND status = ?", id, models.ScanProcessing).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("finalize scan %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrAlreadyFinalized
	}
	return nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a character;
// Postgres rejects invalid UTF-8 and the scan would stay PROCESSING.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// NoopRecorder skips persistence of synchronous analyses.
type NoopRecorder struct{}

func (NoopRecorder) Record(context.Context, *models.Scan) error {
	return nil
}
