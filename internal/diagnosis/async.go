package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"oralscan-backend/internal/models"
)

// ErrShuttingDown is returned by Submit once Shutdown has begun.
var ErrShuttingDown = errors.New("analyzer is shutting down")

// ScanStore is the persistence the background flow needs.
type ScanStore interface {
	Create(ctx context.Context, scan *models.Scan) error
	Complete(ctx context.Context, id uint64, result models.AnalysisResult) error
	Fail(ctx context.Context, id uint64, reason string) error
}

// CompletionNotifier hears about every scan that reached a final state.
type CompletionNotifier interface {
	ScanFinished(ctx context.Context, scan *models.Scan)
}

// AsyncAnalyzer stores a PROCESSING scan, returns it, and finishes the
// analysis in a goroutine. Clients poll the scan to see the result.
type AsyncAnalyzer struct {
	service  *Service
	store    ScanStore
	notifier CompletionNotifier
	timeout  time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewAsyncAnalyzer wires the background flow. A zero timeout means the model
// call is bounded only by the HTTP client.
func NewAsyncAnalyzer(service *Service, store ScanStore, notifier CompletionNotifier, timeout time.Duration, logger *log.Logger) *AsyncAnalyzer {
	return &AsyncAnalyzer{
		service:  service,
		store:    store,
		notifier: notifier,
		timeout:  timeout,
		logger:   logger,
	}
}

// Submit persists the scan as PROCESSING and starts the analysis.
func (a *AsyncAnalyzer) Submit(ctx context.Context, req Request) (*models.Scan, error) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil, ErrShuttingDown
	}
	a.pending.Add(1)
	a.mu.Unlock()

	scan := req.newScan(models.ScanProcessing)
	if err := a.store.Create(ctx, scan); err != nil {
		a.pending.Done()
		return nil, fmt.Errorf("create scan: %w", err)
	}

	go a.process(*scan, req.Image, req.History)

	a.logger.Printf("[Scan] %d queued for user %d", scan.ID, scan.UserID)
	return scan, nil
}

// process owns its copy of the scan; the caller's pointer is never touched.
func (a *AsyncAnalyzer) process(scan models.Scan, img Image, history *models.PatientHistory) {
	defer a.pending.Done()

	// The request context is gone by now.
	ctx := context.Background()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	result, err := a.service.run(ctx, img, history)

	// Write the terminal state even if ctx expired during the model call.
	writeCtx, cancelWrite := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelWrite()

	var storeErr error
	if err != nil {
		scan.Status = models.ScanFailed
		scan.ErrorMessage = err.Error()
		storeErr = a.store.Fail(writeCtx, scan.ID, err.Error())
	} else {
		scan.Status = models.ScanCompleted
		scan.ApplyResult(result)
		storeErr = a.store.Complete(writeCtx, scan.ID, result)
	}
	if storeErr != nil {
		a.logger.Printf("[Scan] %d could not be finalized as %s: %v", scan.ID, scan.Status, storeErr)
		return
	}

	a.logger.Printf("[Scan] %d finalized as %s", scan.ID, scan.Status)
	if a.notifier != nil {
		a.notifier.ScanFinished(writeCtx, &scan)
	}
}

// Shutdown stops accepting work and waits for running analyses or ctx.
func (a *AsyncAnalyzer) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()

	done := make(chan struct{})
	go func() {
		a.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background scans: %w", ctx.Err())
	}
}
