package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gympass/internal/platform/kafka/producer"
)

// DefaultTopic is the Kafka topic credential audit events are published to.
const DefaultTopic = "gympass.credential.audit"

// KafkaPublisher publishes audit events to Kafka.
// Delivery is asynchronous; a failed delivery is logged by the producer, not
// bubbled to the emitting service.
type KafkaPublisher struct {
	producer *producer.Producer
	topic    string
}

// NewKafkaPublisher creates a publisher on top of a configured producer.
func NewKafkaPublisher(p *producer.Producer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &KafkaPublisher{producer: p, topic: topic}
}

// Emit serializes the event and hands it to the producer.
func (k *KafkaPublisher) Emit(_ context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	return k.producer.ProduceAsync(&producer.Message{
		Topic: k.topic,
		Key:   []byte(event.CredentialID),
		Value: payload,
		Headers: map[string]string{
			"action": string(event.Action),
		},
	})
}
