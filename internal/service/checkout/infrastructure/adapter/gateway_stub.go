package adapter

import (
	"context"

	"campus/internal/pkg/logger"

	"github.com/google/uuid"
)

// StubPaymentGateway 是 port.PaymentGateway 的占位实现，授权总是成功。
// 真实提供方接入时实现同一接口替换即可，编排器无需改动。
type StubPaymentGateway struct{}

func NewStubPaymentGateway() *StubPaymentGateway {
	return &StubPaymentGateway{}
}

func (g *StubPaymentGateway) Authorize(ctx context.Context, orderID string, amountCents int64) (string, error) {
	gatewayRef := "auth-" + uuid.New().String()
	logger.Ctx(ctx).Debug().
		Str("order", orderID).
		Int64("amount_cents", amountCents).
		Str("gateway_ref", gatewayRef).
		Msg("Stub gateway authorized payment")
	return gatewayRef, nil
}

func (g *StubPaymentGateway) Cancel(ctx context.Context, gatewayRef string) error {
	logger.Ctx(ctx).Debug().Str("gateway_ref", gatewayRef).Msg("Stub gateway canceled authorization")
	return nil
}
