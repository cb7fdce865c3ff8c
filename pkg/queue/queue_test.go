package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type warmPayload struct {
	ItemID int64  `json:"item_id"`
	Model  string `json:"model"`
}

func TestParsePayloadFromEnvelope(t *testing.T) {
	msg, err := NewMessage("id-1", "forecast.warm", warmPayload{ItemID: 4, Model: "svm"}, time.Unix(0, 0))
	require.NoError(t, err)

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded Message
	require.NoError(t, json.Unmarshal(data, &decoded))

	p, err := ParsePayload[warmPayload](decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.ItemID)
	assert.Equal(t, "svm", p.Model)
}

func TestParsePayloadTypedAndMap(t *testing.T) {
	p, err := ParsePayload[warmPayload](warmPayload{ItemID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ItemID)

	p, err = ParsePayload[warmPayload](map[string]interface{}{"item_id": 9, "model": "forest"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ItemID)
	assert.Equal(t, "forest", p.Model)

	_, err = ParsePayload[warmPayload](42)
	assert.Error(t, err)
}

func TestKeysUsePrefix(t *testing.T) {
	q := NewRedisQueue(nil, nil, redis.NewClient(&redis.Options{Addr: "localhost:0"}), ModeProducerConsumer,
		WithKeyPrefix("test:warm"))

	assert.Equal(t, "test:warm:messages", q.queueKey())
	assert.Equal(t, "test:warm:retry", q.retryKey())
	assert.Equal(t, "test:warm:dlq", q.deadLetterKey())
	assert.Equal(t, 1, q.config.Workers)
	assert.Equal(t, 10*time.Second, q.config.RetryDelay)
}

func TestEnqueueRequiresRunningQueue(t *testing.T) {
	q := NewRedisQueue(nil, nil, redis.NewClient(&redis.Options{Addr: "localhost:0"}), ModeProducerOnly)
	err := q.Enqueue(context.Background(), "forecast.warm", warmPayload{ItemID: 1})
	assert.ErrorIs(t, err, ErrNotRunning)
	assert.NoError(t, q.Stop(context.Background()))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "producer-only", ModeProducerOnly.String())
	assert.Equal(t, "consumer-only", ModeConsumerOnly.String())
	assert.Equal(t, "producer-consumer", ModeProducerConsumer.String())
}
