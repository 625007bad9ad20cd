package media

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// UploadedEvent is published after an upload is stored and recorded.
type UploadedEvent struct {
	MediaID   string    `json:"mediaId"`
	OwnerID   string    `json:"ownerId,omitempty"`
	Filename  string    `json:"filename"`
	Kind      Kind      `json:"kind"`
	Size      int64     `json:"size"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

type EventPublisher interface {
	PublishUploaded(ctx context.Context, event UploadedEvent) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) EventPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &kafkaPublisher{writer: writer}
}

func (p *kafkaPublisher) PublishUploaded(ctx context.Context, event UploadedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.MediaID),
		Value: payload,
		Time:  time.Now(),
	})
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type nopPublisher struct{}

// NewNopPublisher is used when no broker is configured.
func NewNopPublisher() EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishUploaded(context.Context, UploadedEvent) error { return nil }
func (nopPublisher) Close() error                                         { return nil }
