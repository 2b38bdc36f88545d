package kafka

// Topics для Kafka
const (
	TopicShopEvents = "shop.events"
	dlqSuffix       = ".dlq"
)

// Kafka headers для сообщений, ушедших в DLQ
const (
	HeaderEventType     = "x-event-type"
	HeaderOriginalTopic = "x-original-topic"
	HeaderFailedAt      = "x-failed-at"
)

// DLQTopic возвращает topic для сообщений, которые не удалось опубликовать в topic.
func DLQTopic(topic string) string {
	if topic == "" {
		topic = TopicShopEvents
	}
	return topic + dlqSuffix
}
