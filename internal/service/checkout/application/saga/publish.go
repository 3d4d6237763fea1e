package saga

import (
	"campus/internal/pkg/logger"
	"campus/internal/service/checkout/domain"

	"go.opentelemetry.io/otel/attribute"
)

// PublishHandler 是 Saga 的最后一步，发布结算完成事件。
// 业务事务在上一步已经持久化，发布失败只记录告警留给外部重试，
// 绝不触发步骤 1-4 的回滚。
type PublishHandler struct {
	NextHandler
}

func (h *PublishHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.PublishConfirmed")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.topic", "checkout-confirmed"),
	)

	event := domain.NewCheckoutConfirmed(checkoutCtx.Order)
	if err := checkoutCtx.Publisher.PublishCheckoutConfirmed(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("order", checkoutCtx.Order.ID).
			Msg("Failed to publish checkout-confirmed event; left for external retry")
		span.RecordError(err)
	}

	return h.executeNext(checkoutCtx)
}
