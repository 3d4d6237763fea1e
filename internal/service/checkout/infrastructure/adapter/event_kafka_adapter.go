package adapter

import (
	"context"
	"encoding/json"

	"campus/internal/pkg/mq"
	"campus/internal/service/checkout/domain"

	pkgerrors "github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
)

// CheckoutKafkaPublisher 是 port.EventPublisher 的 Kafka 实现。
// 以订单 id 作为消息 key，同一订单的事件落在同一分区保持有序。
type CheckoutKafkaPublisher struct {
	writer *kafka.Writer
}

func NewCheckoutKafkaPublisher(writer *kafka.Writer) *CheckoutKafkaPublisher {
	return &CheckoutKafkaPublisher{writer: writer}
}

func (p *CheckoutKafkaPublisher) PublishCheckoutConfirmed(ctx context.Context, event *domain.CheckoutConfirmed) error {
	data, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal checkout-confirmed event")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(event.OrderID), data)
}

// Close 关闭底层的 Kafka writer。
func (p *CheckoutKafkaPublisher) Close() error {
	return p.writer.Close()
}
