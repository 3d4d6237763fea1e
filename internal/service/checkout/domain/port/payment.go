package port

import (
	"context"

	"campus/internal/pkg/apperr"
)

// ErrPaymentDeclined 由网关适配器在授权被拒时返回。
var ErrPaymentDeclined = apperr.New(apperr.KindPaymentDeclined, "payment authorization declined")

// PaymentGateway 是可插拔的支付提供方能力接口。
// 新的提供方实现同一接口接入，编排器无需改动。
// 授权调用跨进程边界，编排器保证调用期间不持有任何行锁。
type PaymentGateway interface {
	// Authorize 尝试授权指定金额，成功返回网关侧的授权引用。
	Authorize(ctx context.Context, orderID string, amountCents int64) (gatewayRef string, err error)
	// Cancel 撤销一笔授权。对已撤销的授权重复调用必须安全。
	Cancel(ctx context.Context, gatewayRef string) error
}
