package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus 定义了支付尝试的状态。
type PaymentStatus string

const (
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusCanceled   PaymentStatus = "CANCELED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
)

// Payment 记录一次结算尝试的支付授权。
// 每次结算尝试恰有一条记录，状态只由编排器经网关端口驱动。
type Payment struct {
	ID          string
	OrderID     string
	AmountCents int64
	Status      PaymentStatus
	// GatewayRef 是支付网关返回的授权引用，补偿时用它撤销授权。
	GatewayRef string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func NewPayment(orderID string, amountCents int64, status PaymentStatus, gatewayRef string) *Payment {
	now := time.Now()
	return &Payment{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		AmountCents: amountCents,
		Status:      status,
		GatewayRef:  gatewayRef,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// MarkCanceled 将授权标记为已撤销，幂等。
func (p *Payment) MarkCanceled() {
	if p.Status == PaymentStatusCanceled {
		return
	}
	p.Status = PaymentStatusCanceled
	p.UpdatedAt = time.Now()
}
