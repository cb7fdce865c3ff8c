package kafka

import (
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer()
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"k:9092"}), WithDelivery(2, 0))
	assert.Error(t, err)
}

func TestProducerConfigOptions(t *testing.T) {
	cfg := defaultProducerConfig()
	for _, opt := range []ProducerOption{
		WithBrokers([]string{"k1:9092"}),
		WithCompression("zstd"),
		WithBatching(0, 2048, 50*time.Millisecond),
		WithKeyedPartitioning(false),
	} {
		opt(cfg)
	}
	require.NoError(t, cfg.validate())
	assert.Equal(t, kafka.Zstd, cfg.codec())
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 2048, cfg.BatchBytes)
	assert.IsType(t, &kafka.LeastBytes{}, cfg.balancer())

	WithCompression("brotli")(cfg)
	assert.Equal(t, kafka.Gzip, cfg.codec())
}

func TestProducerEncodeValue(t *testing.T) {
	b, err := encodeValue("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encodeValue(map[string]int64{"item_id": 4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"item_id":4}`, string(b))

	_, err = encodeValue(make(chan int))
	assert.Error(t, err)
}
