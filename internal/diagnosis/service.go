package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"oralscan-backend/internal/models"

	"gorm.io/datatypes"
)

// Model is the external vision model.
type Model interface {
	Analyze(ctx context.Context, prompt string, img Image) (string, error)
}

// Recorder persists a finished synchronous analysis. The database recorder
// sets scan.ID; the no-op recorder leaves it at 0.
type Recorder interface {
	Record(ctx context.Context, scan *models.Scan) error
}

// Request is one analysis: who asked, the image, and the optional history.
type Request struct {
	UserID     uint64
	PatientID  *uint64
	Image      Image
	History    *models.PatientHistory
	RawHistory json.RawMessage
}

func (r Request) newScan(status string) *models.Scan {
	scan := &models.Scan{
		UserID:    r.UserID,
		PatientID: r.PatientID,
		ImageURL:  r.Image.DataURL(),
		Status:    status,
	}
	if r.History != nil {
		scan.PatientHistory = datatypes.JSON(r.RawHistory)
	}
	return scan
}

// Outcome is the synchronous answer. ScanID is 0 when nothing was stored.
type Outcome struct {
	models.AnalysisResult
	ScanID uint64
}

// Service runs compose -> model -> parse -> record.
type Service struct {
	model    Model
	recorder Recorder
	logger   *log.Logger
}

func NewService(model Model, recorder Recorder, logger *log.Logger) *Service {
	return &Service{model: model, recorder: recorder, logger: logger}
}

// Analyze blocks on the model call and then on the recorder.
func (s *Service) Analyze(ctx context.Context, req Request) (*Outcome, error) {
	result, err := s.run(ctx, req.Image, req.History)
	if err != nil {
		return nil, err
	}

	scan := req.newScan(models.ScanCompleted)
	scan.ApplyResult(result)
	if err := s.recorder.Record(ctx, scan); err != nil {
		return nil, fmt.Errorf("record scan: %w", err)
	}

	s.logger.Printf("[Analyze] user=%d risk=%s confidence=%d scan=%d", req.UserID, result.Risk, result.Confidence, scan.ID)
	return &Outcome{AnalysisResult: result, ScanID: scan.ID}, nil
}

func (s *Service) run(ctx context.Context, img Image, history *models.PatientHistory) (models.AnalysisResult, error) {
	prompt := ComposePrompt(history)

	started := time.Now()
	text, err := s.model.Analyze(ctx, prompt, img)
	if err != nil {
		s.logger.Printf("[Analyze] model call failed after %s: %v", time.Since(started).Round(time.Millisecond), err)
		return models.AnalysisResult{}, err
	}
	return ParseResponse(text), nil
}
