package kafka

import (
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/events"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	// originTopic непустой только у DLQ-паблишера.
	originTopic string
}

// NewOutboxPublisher создаёт Kafka-паблишер для outbox.
func NewOutboxPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicShopEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
	}
}

// NewDLQPublisher создаёт паблишер в dead letter topic для сообщений из topic.
func NewDLQPublisher(producer *Producer, topic string) domain.OutboxPublisher {
	if topic == "" {
		topic = TopicShopEvents
	}
	return &OutboxTopicPublisher{
		producer:    producer,
		topic:       DLQTopic(topic),
		originTopic: topic,
	}
}

func (p *OutboxTopicPublisher) Publish(event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	now := p.producer.now().UTC()
	value, err := events.Envelope(event, now)
	if err != nil {
		return fmt.Errorf("build envelope for %s: %w", event.ID, err)
	}

	headers := map[string]string{HeaderEventType: event.EventType}
	if p.originTopic != "" {
		headers[HeaderOriginalTopic] = p.originTopic
		headers[HeaderFailedAt] = now.Format(time.RFC3339Nano)
	}

	return p.producer.PublishEvent(p.topic, key, value, headers)
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
