// Package notification consumes media upload events and notifies the
// uploader.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/Oniqq60/wiki_media/internal/media"
)

type Consumer interface {
	Start(ctx context.Context) error
	Close() error
}

type kafkaConsumer struct {
	reader  *kafka.Reader
	handler EventHandler
	topic   string
	groupID string
}

func NewKafkaConsumer(brokers []string, topic, groupID string, handler EventHandler) Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &kafkaConsumer{
		reader:  reader,
		handler: handler,
		topic:   topic,
		groupID: groupID,
	}
}

// Start reads messages until ctx is cancelled. Malformed messages and
// handler failures are logged and skipped.
func (c *kafkaConsumer) Start(ctx context.Context) error {
	log.Infof("media event consumer started (topic=%s, group=%s)", c.topic, c.groupID)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("read media event: %v", err)
			continue
		}

		if err := c.process(ctx, msg); err != nil {
			log.WithField("offset", msg.Offset).Warnf("media event: %v", err)
		}
	}
}

func (c *kafkaConsumer) process(ctx context.Context, msg kafka.Message) error {
	event, err := decodeEvent(msg)
	if err != nil {
		return err
	}
	return c.handler.HandleEvent(ctx, event)
}

func (c *kafkaConsumer) Close() error {
	return c.reader.Close()
}

func decodeEvent(msg kafka.Message) (media.UploadedEvent, error) {
	var event media.UploadedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return media.UploadedEvent{}, pkgerrors.Wrap(err, "decode uploaded event")
	}
	return event, nil
}
