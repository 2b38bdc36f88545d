package events

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	data, err := Encode(map[string]any{
		"user_id":     int64(7),
		"product_ids": []int64{1, 2, 2},
		"email":       "ana@example.com",
		"created_at":  created,
		"nested":      map[string]any{"count": 3},
	})
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, "7", decoded["user_id"])
	require.Equal(t, []any{"1", "2", "2"}, decoded["product_ids"])
	require.Equal(t, "ana@example.com", decoded["email"])
	require.Equal(t, created.Format(time.RFC3339Nano), decoded["created_at"])
	require.Equal(t, map[string]any{"count": float64(3)}, decoded["nested"])
}

func TestEncode_Int64KeepsPrecision(t *testing.T) {
	t.Parallel()

	const big int64 = 9007199254740993 // 2^53 + 1
	data, err := Encode(map[string]any{
		"product_id":  big,
		"price_minor": int64(math.MaxInt64),
		"product_ids": []int64{big, math.MinInt64},
	})
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	productID, err := strconv.ParseInt(decoded["product_id"].(string), 10, 64)
	require.NoError(t, err)
	require.Equal(t, big, productID)
	require.Equal(t, "9223372036854775807", decoded["price_minor"])
	require.Equal(t, []any{"9007199254740993", "-9223372036854775808"}, decoded["product_ids"])
}

func TestEncode_UnsupportedValue(t *testing.T) {
	t.Parallel()

	_, err := Encode(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
}

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(AggregateCart, 42, CartUpdated, map[string]any{"item_count": 2})
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "cart", msg.AggregateType)
	require.Equal(t, "42", msg.AggregateID)
	require.Equal(t, "shop.cart.updated", msg.EventType)

	other, err := NewMessage(AggregateCart, 42, CartUpdated, nil)
	require.NoError(t, err)
	require.NotEqual(t, msg.ID, other.ID)
}

func TestEnvelope(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(AggregateProduct, 5, ProductDeleted, map[string]any{"removed_refs": 3})
	require.NoError(t, err)

	publishedAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	data, err := Envelope(msg, publishedAt)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, msg.ID, decoded["id"])
	require.Equal(t, "product", decoded["aggregate_type"])
	require.Equal(t, "5", decoded["aggregate_id"])
	require.Equal(t, "shop.product.deleted", decoded["event_type"])
	require.Equal(t, map[string]any{"removed_refs": float64(3)}, decoded["payload"])
	require.True(t, strings.HasPrefix(decoded["published_at"].(string), "2026-05-01T10:00:00"))
}

func TestEnvelope_InvalidPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(AggregateUser, 1, UserDeleted, nil)
	require.NoError(t, err)
	msg.Payload = []byte("not json")

	_, err = Envelope(msg, time.Now())
	require.Error(t, err)
}
