package repository

import (
	"context"
	"strconv"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
	pkgkafka "StockPulse/pkg/kafka"
)

var _ domrepo.SalesPublisher = (*KafkaSalesPublisher)(nil)

// KafkaSalesPublisher publishes sales updates keyed by item, so all updates
// of one item land on the same partition in order.
type KafkaSalesPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaSalesPublisher(producer *pkgkafka.Producer, topic string) *KafkaSalesPublisher {
	return &KafkaSalesPublisher{producer: producer, topic: topic}
}

func (p *KafkaSalesPublisher) PublishSalesUpdate(ctx context.Context, ev *models.SalesUpdatedEvent) error {
	return p.producer.Publish(ctx, p.topic, ItemKey(ev.ItemID), ev)
}

// Close is a no-op; the producer is shared and closed by its owner.
func (p *KafkaSalesPublisher) Close() error {
	return nil
}

// ItemKey is the partition key of an item.
func ItemKey(itemID int64) []byte {
	return []byte(strconv.FormatInt(itemID, 10))
}
