package saga

import (
	"campus/internal/pkg/apperr"
	"campus/internal/service/checkout/domain"
)

// ConfirmOrderHandler 将订单推进到 CONFIRMED——这是提交点。
// 此步骤成功后，本订单不再执行任何补偿；它自己不注册补偿动作。
type ConfirmOrderHandler struct {
	NextHandler
}

func (h *ConfirmOrderHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.ConfirmOrder")
	defer span.End()

	order := checkoutCtx.Order
	if err := order.Confirm(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := checkoutCtx.Orders.Save(ctx, order); err != nil {
		// 确认未落库，提交点尚未到达: 回退内存状态后让前序步骤全部补偿。
		span.RecordError(err)
		order.Status = domain.OrderStatusPending
		return apperr.Wrap(apperr.KindInternal, "save confirmed order", err)
	}
	span.AddEvent("Order confirmed")

	return h.executeNext(checkoutCtx)
}
