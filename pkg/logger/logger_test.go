package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu      sync.Mutex
	topic   string
	batches [][]AggregatedLogEntry
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func (p *capturePublisher) entries() []AggregatedLogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []AggregatedLogEntry
	for _, b := range p.batches {
		out = append(out, b...)
	}
	return out
}

func TestLoggerWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&Config{Level: "debug", Format: "json", Writer: &buf})
	require.NoError(t, err)

	l.With(String("component", "forecast")).Info("computed",
		Int64("item_id", 7), Float64("predicted", 12.5), Error(errors.New("x")))

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "computed", line["message"])
	assert.Equal(t, "forecast", line["component"])
	assert.EqualValues(t, 7, line["item_id"])
	assert.EqualValues(t, 12.5, line["predicted"])
	assert.Equal(t, "x", line["error"])
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Writer: &bytes.Buffer{}})
	assert.Error(t, err)
}

func TestNilErrorField(t *testing.T) {
	k, v := Error(nil).GetKeyValue()
	assert.Equal(t, "error", k)
	assert.Nil(t, v)
}

func TestCollectorDeduplicatesAndFlushesOnClose(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{
		TimeInterval:   time.Hour,
		CountThreshold: 100,
		Topic:          "logs",
		Service:        "stockpulse",
		Publisher:      pub,
	})

	for i := 0; i < 3; i++ {
		l.Warn("cache unavailable", String("backend", "redis"))
	}
	l.Error("store failed", Int64("item_id", 1))
	l.Info("ignored")

	require.Equal(t, 2, l.collector().Pending())
	l.RemoveCollector()

	got := pub.entries()
	require.Len(t, got, 2)
	assert.Equal(t, "logs", pub.topic)
	counts := map[string]int{}
	for _, e := range got {
		counts[e.Message] = e.Count
		assert.Equal(t, "stockpulse", e.Service)
	}
	assert.Equal(t, 3, counts["cache unavailable"])
	assert.Equal(t, 1, counts["store failed"])
}

func TestCollectorThresholdFlush(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Publisher: pub})

	c.AddLog("warn", "a", nil, "x.go:1")
	c.AddLog("warn", "b", nil, "x.go:2")
	assert.Equal(t, 0, c.Pending())

	c.Close()
	assert.Len(t, pub.entries(), 2)
}

func TestCollectorWithoutPublisherDrops(t *testing.T) {
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 1})
	c.AddLog("error", "a", nil, "x.go:1")
	assert.Equal(t, 0, c.Pending())
	c.Close()
}

func TestChildLoggerSeesLaterCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	child := l.With(String("component", "warmup"))

	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Publisher: pub})
	child.Error("job failed", Int("attempt", 2))
	require.Equal(t, 1, l.collector().Pending())

	l.RemoveCollector()
	got := pub.entries()
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Fields["attempt"])
	assert.Contains(t, got[0].Caller, "logger_test.go:")
}
