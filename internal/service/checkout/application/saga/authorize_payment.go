package saga

import (
	"context"
	"errors"

	"campus/internal/pkg/logger"
	"campus/internal/service/checkout/domain"
	"campus/internal/service/checkout/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AuthorizePaymentHandler 负责支付授权步骤。
// 网关调用跨进程边界、可能缓慢或独立失败，因此在此步骤期间
// 不持有任何行锁——库存锁被刻意推迟到授权落定之后的下一步。
type AuthorizePaymentHandler struct {
	NextHandler
}

func (h *AuthorizePaymentHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.AuthorizePayment")
	defer span.End()

	order := checkoutCtx.Order
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int64("order.total_cents", order.TotalCents),
	)

	gatewayRef, err := checkoutCtx.Gateway.Authorize(ctx, order.ID, order.TotalCents)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, port.ErrPaymentDeclined) {
			span.SetStatus(codes.Error, "Payment declined")
			failed := domain.NewPayment(order.ID, order.TotalCents, domain.PaymentStatusFailed, "")
			if saveErr := checkoutCtx.Payments.Save(ctx, failed); saveErr != nil {
				logger.Ctx(ctx).Error().Err(saveErr).Str("order", order.ID).
					Msg("Failed to record declined payment attempt")
			}
		}
		return err
	}

	payment := domain.NewPayment(order.ID, order.TotalCents, domain.PaymentStatusAuthorized, gatewayRef)
	if err := checkoutCtx.Payments.Save(ctx, payment); err != nil {
		// 授权已发生但记录失败: 先撤销授权再中断，避免悬挂的扣款。
		span.RecordError(err)
		if cancelErr := checkoutCtx.Gateway.Cancel(ctx, gatewayRef); cancelErr != nil {
			logger.Ctx(ctx).Error().Err(cancelErr).Str("order", order.ID).
				Msg("CRITICAL: failed to void authorization after save failure")
		}
		return err
	}
	checkoutCtx.Payment = payment
	span.AddEvent("Payment authorized")

	// 补偿: 撤销网关授权并落库 CANCELED。两个动作都幂等。
	checkoutCtx.AddCompensation(func(compCtx context.Context) {
		if err := checkoutCtx.Gateway.Cancel(compCtx, payment.GatewayRef); err != nil {
			logger.Ctx(compCtx).Error().Err(err).Str("order", order.ID).
				Msg("CRITICAL: failed to cancel payment authorization during compensation")
		}
		payment.MarkCanceled()
		if err := checkoutCtx.Payments.Save(compCtx, payment); err != nil {
			logger.Ctx(compCtx).Error().Err(err).Str("order", order.ID).
				Msg("CRITICAL: failed to persist canceled payment during compensation")
		}
	})

	return h.executeNext(checkoutCtx)
}
