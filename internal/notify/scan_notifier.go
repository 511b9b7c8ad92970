package notify

import (
	"context"
	"fmt"
	"log"

	"oralscan-backend/internal/models"
)

// TokenLookup returns the device token registered for a user ("" if none).
type TokenLookup interface {
	DeviceToken(ctx context.Context, userID uint64) (string, error)
}

// ScanNotifier tells a doctor that a background scan has finished.
type ScanNotifier struct {
	tokens TokenLookup
	sender Sender
	logger *log.Logger
}

func NewScanNotifier(tokens TokenLookup, sender Sender, logger *log.Logger) *ScanNotifier {
	return &ScanNotifier{tokens: tokens, sender: sender, logger: logger}
}

// ScanFinished is best effort: failures are logged, never returned.
func (n *ScanNotifier) ScanFinished(ctx context.Context, scan *models.Scan) {
	token, err := n.tokens.DeviceToken(ctx, scan.UserID)
	if err != nil {
		n.logger.Printf("[FCM] token lookup for user %d failed: %v", scan.UserID, err)
		return
	}
	if token == "" {
		return
	}

	title, body := "Scan analysis ready", fmt.Sprintf("Scan #%d finished with risk level %s.", scan.ID, scan.RiskLevel)
	if scan.Status == models.ScanFailed {
		title, body = "Scan analysis failed", fmt.Sprintf("Scan #%d could not be analyzed. Please retry.", scan.ID)
	}

	data := map[string]string{
		"scan_id": fmt.Sprintf("%d", scan.ID),
		"status":  scan.Status,
		"type":    "scan_finished",
	}
	if err := n.sender.Send(ctx, token, title, body, data); err != nil {
		n.logger.Printf("[FCM] notify user %d about scan %d: %v", scan.UserID, scan.ID, err)
	}
}
