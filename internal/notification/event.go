package notification

import (
	"fmt"
	"time"

	"github.com/Oniqq60/wiki_media/internal/media"
)

const TypeMediaUploaded = "media_uploaded"

// Notification is a message delivered to the uploader.
type Notification struct {
	Type        string
	MediaID     string
	RecipientID string
	Message     string
	Location    string
	CreatedAt   time.Time
}

func NewNotificationFromEvent(event media.UploadedEvent) Notification {
	return Notification{
		Type:        TypeMediaUploaded,
		MediaID:     event.MediaID,
		RecipientID: event.OwnerID,
		Message:     fmt.Sprintf("Your %s %s is available at %s", event.Kind, event.Filename, event.Location),
		Location:    event.Location,
		CreatedAt:   time.Now(),
	}
}
