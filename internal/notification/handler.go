package notification

import (
	"context"
	"errors"
	"strings"

	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/Oniqq60/wiki_media/internal/media"
)

var (
	ErrEmptyMediaID  = errors.New("mediaId is required")
	ErrEmptyLocation = errors.New("location is required")
)

type EventHandler interface {
	HandleEvent(ctx context.Context, event media.UploadedEvent) error
}

type eventHandler struct {
	notifier Notifier
}

func NewEventHandler(notifier Notifier) EventHandler {
	return &eventHandler{notifier: notifier}
}

// HandleEvent notifies the uploader. Anonymous uploads have nobody to
// notify and are skipped.
func (h *eventHandler) HandleEvent(ctx context.Context, event media.UploadedEvent) error {
	if strings.TrimSpace(event.MediaID) == "" {
		return ErrEmptyMediaID
	}
	if strings.TrimSpace(event.Location) == "" {
		return ErrEmptyLocation
	}
	if event.OwnerID == "" {
		log.WithField("media_id", event.MediaID).Debug("anonymous upload, skip notification")
		return nil
	}

	if err := h.notifier.SendNotification(ctx, NewNotificationFromEvent(event)); err != nil {
		return pkgerrors.Wrap(err, "send notification")
	}
	return nil
}
