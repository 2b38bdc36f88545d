// Package events описывает доменные события магазина и их кодирование для outbox.
package events

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// EventType определяет тип события.
type EventType string

const (
	UserRegistered EventType = "shop.user.registered"
	UserDeleted    EventType = "shop.user.deleted"

	AddressCreated EventType = "shop.address.created"
	AddressDeleted EventType = "shop.address.deleted"

	ProductCreated EventType = "shop.product.created"
	ProductDeleted EventType = "shop.product.deleted"

	CartUpdated EventType = "shop.cart.updated"
	CartDeleted EventType = "shop.cart.deleted"
)

// Типы агрегатов в outbox.
const (
	AggregateUser    = "user"
	AggregateAddress = "address"
	AggregateProduct = "product"
	AggregateCart    = "cart"
)

// Encode сериализует поля события в protojson.
// Срезы int64 и вложенные карты приводятся к типам, понятным structpb.
func Encode(fields map[string]any) ([]byte, error) {
	normalized := make(map[string]any, len(fields))
	for key, value := range fields {
		normalized[key] = normalize(value)
	}

	payload, err := structpb.NewStruct(normalized)
	if err != nil {
		return nil, fmt.Errorf("build event payload: %w", err)
	}

	data, err := protojson.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	return data, nil
}

// Decode разбирает payload события обратно в карту.
func Decode(data []byte) (map[string]any, error) {
	payload := &structpb.Struct{}
	if err := protojson.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return payload.AsMap(), nil
}

// NewMessage собирает outbox-сообщение с новым id.
func NewMessage(aggregateType string, aggregateID int64, eventType EventType, fields map[string]any) (domain.OutboxMessage, error) {
	payload, err := Encode(fields)
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	return domain.OutboxMessage{
		ID:            uuid.NewString(),
		AggregateType: aggregateType,
		AggregateID:   strconv.FormatInt(aggregateID, 10),
		EventType:     string(eventType),
		Payload:       payload,
	}, nil
}

// Envelope оборачивает сообщение в конверт для брокера.
func Envelope(msg domain.OutboxMessage, publishedAt time.Time) ([]byte, error) {
	payload := &structpb.Struct{}
	if len(msg.Payload) > 0 {
		if err := protojson.Unmarshal(msg.Payload, payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
	}

	envelope := &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":             structpb.NewStringValue(msg.ID),
		"aggregate_type": structpb.NewStringValue(msg.AggregateType),
		"aggregate_id":   structpb.NewStringValue(msg.AggregateID),
		"event_type":     structpb.NewStringValue(msg.EventType),
		"payload":        structpb.NewStructValue(payload),
		"published_at":   structpb.NewStringValue(publishedAt.UTC().Format(time.RFC3339Nano)),
	}}

	data, err := protojson.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return data, nil
}

// normalize приводит значения к типам structpb. Идентификаторы и суммы int64
// кодируются десятичной строкой: в float64 они теряют точность выше 2^53.
// Счётчики int остаются числами.
func normalize(value any) any {
	switch v := value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return float64(v)
	case []int64:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, strconv.FormatInt(item, 10))
		}
		return out
	case []string:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, item)
		}
		return out
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	default:
		return v
	}
}
