package saga

import (
	"context"

	"campus/internal/pkg/logger"
	"campus/internal/service/checkout/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DecrementStockHandler 负责库存扣减步骤，全有或全无。
// 行锁的获取顺序与不足校验由 StockRepository 实现保证。
type DecrementStockHandler struct {
	NextHandler
}

func (h *DecrementStockHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.DecrementStock")
	defer span.End()

	order := checkoutCtx.Order
	adjustments := make([]domain.StockAdjustment, 0, len(order.Items))
	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		adjustments = append(adjustments, domain.StockAdjustment{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
		productIDs = append(productIDs, item.ProductID)
	}
	span.SetAttributes(attribute.StringSlice("products", productIDs))

	if err := checkoutCtx.Stock.DecrementAll(ctx, order.Tenant, adjustments); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Stock decrement failed")
		return err
	}
	span.AddEvent("All stock lines decremented")

	// 补偿: 恢复扣减的数量。
	checkoutCtx.AddCompensation(func(compCtx context.Context) {
		if err := checkoutCtx.Stock.RestoreAll(compCtx, order.Tenant, adjustments); err != nil {
			logger.Ctx(compCtx).Error().Err(err).Str("order", order.ID).
				Msg("CRITICAL: failed to restore stock during compensation")
		}
	})

	return h.executeNext(checkoutCtx)
}
