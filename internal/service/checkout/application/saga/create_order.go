package saga

import (
	"context"

	"campus/internal/pkg/apperr"
	"campus/internal/pkg/logger"
)

// CreateOrderHandler 负责持久化 PENDING 订单，是 Saga 的第一个正向步骤。
type CreateOrderHandler struct {
	NextHandler
}

func (h *CreateOrderHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.CreateOrder")
	defer span.End()

	order := checkoutCtx.Order
	if err := checkoutCtx.Orders.Save(ctx, order); err != nil {
		span.RecordError(err)
		return apperr.Wrap(apperr.KindInternal, "save pending order", err)
	}
	span.AddEvent("Pending order saved")

	// 补偿: 将订单标记为 CANCELED。Cancel 对已取消订单是空操作，重跑安全。
	checkoutCtx.AddCompensation(func(compCtx context.Context) {
		if err := order.Cancel(); err != nil {
			logger.Ctx(compCtx).Error().Err(err).Str("order", order.ID).
				Msg("CRITICAL: failed to cancel order during compensation")
			return
		}
		if err := checkoutCtx.Orders.Save(compCtx, order); err != nil {
			logger.Ctx(compCtx).Error().Err(err).Str("order", order.ID).
				Msg("CRITICAL: failed to persist canceled order during compensation")
		}
	})

	return h.executeNext(checkoutCtx)
}
