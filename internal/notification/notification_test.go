package notification

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oniqq60/wiki_media/internal/media"
)

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (n *recordingNotifier) SendNotification(_ context.Context, notification Notification) error {
	n.sent = append(n.sent, notification)
	return n.err
}

func uploadedEvent() media.UploadedEvent {
	return media.UploadedEvent{
		MediaID:   "m-1",
		OwnerID:   "user-1",
		Filename:  "abc.jpg",
		Kind:      media.KindImage,
		Size:      42,
		Location:  "/static/uploads/abc.jpg",
		Timestamp: time.Now(),
	}
}

func TestHandleEventNotifiesOwner(t *testing.T) {
	notifier := &recordingNotifier{}
	require.NoError(t, NewEventHandler(notifier).HandleEvent(context.Background(), uploadedEvent()))

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, TypeMediaUploaded, n.Type)
	assert.Equal(t, "m-1", n.MediaID)
	assert.Equal(t, "user-1", n.RecipientID)
	assert.Equal(t, "/static/uploads/abc.jpg", n.Location)
	assert.Equal(t, "Your image abc.jpg is available at /static/uploads/abc.jpg", n.Message)
}

func TestHandleEventValidation(t *testing.T) {
	notifier := &recordingNotifier{}
	h := NewEventHandler(notifier)

	event := uploadedEvent()
	event.MediaID = " "
	assert.ErrorIs(t, h.HandleEvent(context.Background(), event), ErrEmptyMediaID)

	event = uploadedEvent()
	event.Location = ""
	assert.ErrorIs(t, h.HandleEvent(context.Background(), event), ErrEmptyLocation)

	event = uploadedEvent()
	event.OwnerID = ""
	assert.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Empty(t, notifier.sent)
}

func TestHandleEventNotifierFailure(t *testing.T) {
	cause := errors.New("smtp down")
	err := NewEventHandler(&recordingNotifier{err: cause}).HandleEvent(context.Background(), uploadedEvent())
	assert.ErrorIs(t, err, cause)
}

func TestConsumerProcess(t *testing.T) {
	notifier := &recordingNotifier{}
	c := &kafkaConsumer{handler: NewEventHandler(notifier)}

	payload := []byte(`{"mediaId":"m-2","ownerId":"u","filename":"clip.mp4","kind":"video","size":1,"location":"/static/uploads/clip.mp4"}`)
	require.NoError(t, c.process(context.Background(), kafka.Message{Value: payload}))
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Your video clip.mp4 is available at /static/uploads/clip.mp4", notifier.sent[0].Message)

	assert.Error(t, c.process(context.Background(), kafka.Message{Value: []byte("not json")}))
	assert.Len(t, notifier.sent, 1)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New()
	logger.SetOutput(&buf)

	n := NewNotificationFromEvent(uploadedEvent())
	require.NoError(t, NewLogNotifier(logger).SendNotification(context.Background(), n))

	out := buf.String()
	assert.Contains(t, out, "media_id=m-1")
	assert.Contains(t, out, "recipient=user-1")
	assert.Contains(t, out, "type=media_uploaded")
}
