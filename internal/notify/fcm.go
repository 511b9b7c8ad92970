package notify

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

// Sender delivers one push message to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// FCMSender sends through Firebase Cloud Messaging.
type FCMSender struct {
	client *messaging.Client
	logger *log.Logger
}

// NewFCMSender builds a sender from a service-account JSON file.
func NewFCMSender(ctx context.Context, credentialsFile string, logger *log.Logger) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	logger.Println("[FCM] Firebase Cloud Messaging ready")
	return &FCMSender{client: client, logger: logger}, nil
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		s.logger.Printf("[FCM] send failed: %v", err)
		return err
	}
	return nil
}

// NoopSender drops every message. Used when Firebase is not configured.
type NoopSender struct{}

func (NoopSender) Send(context.Context, string, string, string, map[string]string) error {
	return nil
}
