package queue

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisPublisher_Publish(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	key := "test:whatsapp:" + time.Now().Format("150405.000000")
	defer client.Del(ctx, key)

	publisher := NewRedisPublisher(client, key)
	msg := notification.OutboundMessage{
		Recipients: []string{"628111111111"},
		Title:      "Late Employee",
		Message:    "Budi late today 16 minutes",
		QueuedAt:   time.Date(2025, 3, 10, 2, 46, 0, 0, time.UTC),
	}
	require.NoError(t, publisher.Publish(ctx, msg))

	raw, err := client.RPop(ctx, key).Bytes()
	require.NoError(t, err)

	var got notification.OutboundMessage
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, msg.Recipients, got.Recipients)
	assert.Equal(t, msg.Message, got.Message)
	assert.True(t, msg.QueuedAt.Equal(got.QueuedAt))
}
