package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"auth-service/internal/usecase"
)

const TopicAuthEvents = "auth.events"

// AuthEventProducer publishes account resolution outcomes to Kafka. The auth
// pipeline never blocks on it; failures are logged by the caller and dropped.
type AuthEventProducer struct {
	producer sarama.SyncProducer
}

func NewAuthEventProducer(brokers []string) (*AuthEventProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &AuthEventProducer{producer: producer}, nil
}

func (p *AuthEventProducer) PublishAuthEvent(ctx context.Context, ev *usecase.AuthEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal auth event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: TopicAuthEvents,
		// Partition by account so one account's events stay ordered.
		Key:   sarama.StringEncoder(ev.AccountID),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send auth event: %w", err)
	}

	log.Printf("auth event %s sent to partition %d at offset %d", ev.Kind, partition, offset)
	return nil
}

func (p *AuthEventProducer) Close() error {
	return p.producer.Close()
}
