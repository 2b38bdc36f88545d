package kafka

import (
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicShopEvents {
			t.Errorf("expected topic %s, got %s", TopicShopEvents, msg.Topic)
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != HeaderEventType {
			t.Errorf("unexpected headers: %+v", msg.Headers)
		}
		return nil
	})

	err := producer.PublishEvent(TopicShopEvents, "user-1", []byte(`{"id":"1"}`), map[string]string{
		HeaderEventType: "shop.user.registered",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := newProducer(mockProducer)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := producer.PublishEvent(TopicShopEvents, "user-1", []byte(`{}`), nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestDLQTopic(t *testing.T) {
	if got := DLQTopic("orders"); got != "orders.dlq" {
		t.Fatalf("expected orders.dlq, got %s", got)
	}
	if got := DLQTopic(""); got != "shop.events.dlq" {
		t.Fatalf("expected shop.events.dlq, got %s", got)
	}
}
