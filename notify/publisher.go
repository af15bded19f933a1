package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Event is the stream form of a notification.
type Event struct {
	NotificationID string    `json:"notification_id"`
	TargetUserID   string    `json:"target_user_id"`
	Message        string    `json:"message"`
	OrderID        string    `json:"order_id,omitempty"`
	DeliveryID     string    `json:"delivery_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// SaramaPublisher writes events to a Kafka topic keyed by target user, so
// one user's notifications stay in order on one partition.
type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(brokers []string, topic string) (*SaramaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	log.Printf("Sarama producer created successfully with brokers %v", brokers)
	return NewSaramaPublisherWithProducer(producer, topic), nil
}

func NewSaramaPublisherWithProducer(producer sarama.SyncProducer, topic string) *SaramaPublisher {
	return &SaramaPublisher{producer: producer, topic: topic}
}

func (p *SaramaPublisher) Publish(ctx context.Context, ev Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.TargetUserID),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", p.topic, err)
	}
	return nil
}

func (p *SaramaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
