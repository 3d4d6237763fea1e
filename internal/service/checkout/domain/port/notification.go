package port

import (
	"context"

	"campus/internal/service/checkout/domain"
)

// EventPublisher 是结算完成事件的出站端口。
// 发布失败由调用方记录日志并留给外部重试，绝不触发回滚。
type EventPublisher interface {
	PublishCheckoutConfirmed(ctx context.Context, event *domain.CheckoutConfirmed) error
}
