package adapter

import (
	"context"
	"errors"

	"campus/internal/service/checkout/domain"
	"campus/internal/service/checkout/domain/port"
)

// FanoutPublisher 把同一事件投递给多个下游（Kafka、推送流等）。
// 各下游独立失败，错误聚合后由调用方按尽力而为语义处理。
type FanoutPublisher struct {
	targets []port.EventPublisher
}

func NewFanoutPublisher(targets ...port.EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{targets: targets}
}

func (p *FanoutPublisher) PublishCheckoutConfirmed(ctx context.Context, event *domain.CheckoutConfirmed) error {
	var combined error
	for _, target := range p.targets {
		if err := target.PublishCheckoutConfirmed(ctx, event); err != nil {
			combined = errors.Join(combined, err)
		}
	}
	return combined
}
