package notification

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Notifier delivers notifications.
type Notifier interface {
	SendNotification(ctx context.Context, notification Notification) error
}

type logNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) Notifier {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &logNotifier{logger: logger}
}

func (n *logNotifier) SendNotification(_ context.Context, notification Notification) error {
	n.logger.WithFields(log.Fields{
		"type":      notification.Type,
		"media_id":  notification.MediaID,
		"recipient": notification.RecipientID,
		"location":  notification.Location,
		"at":        notification.CreatedAt.Format(time.RFC3339),
	}).Info(notification.Message)
	return nil
}
