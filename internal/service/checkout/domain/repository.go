package domain

import (
	"context"

	"campus/internal/pkg/apperr"
)

var (
	ErrOrderNotFound   = apperr.New(apperr.KindNotFound, "order not found")
	ErrProductNotFound = apperr.New(apperr.KindNotFound, "product not found")
	// ErrInsufficientStock 由库存扣减在任何一行数量不足时返回，
	// 此时整个扣减不产生任何写入。
	ErrInsufficientStock = apperr.New(apperr.KindInsufficientStock, "insufficient stock")
)

// OrderRepository 是订单持久化的出站端口。没有删除操作。
type OrderRepository interface {
	FindByID(ctx context.Context, id, tenant string) (*Order, error)
	Save(ctx context.Context, order *Order) error
}

// PaymentRepository 是支付记录持久化的出站端口。没有删除操作。
type PaymentRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*Payment, error)
	Save(ctx context.Context, payment *Payment) error
}

// StockRepository 是库存的出站端口。
// DecrementAll 是结算流程中唯一持行锁的操作: 实现必须按商品 id
// 升序逐行加排他锁（固定顺序避免跨订单死锁），在任何写入前
// 校验每一行 available_qty ≥ 请求量，任意一行不足即整体失败
// 并返回 ErrInsufficientStock，不留下部分扣减。
type StockRepository interface {
	FindByProductIDs(ctx context.Context, tenant string, productIDs []string) ([]*StockLine, error)
	DecrementAll(ctx context.Context, tenant string, adjustments []StockAdjustment) error
	// RestoreAll 恢复 DecrementAll 扣减的数量，作为补偿动作可安全重跑
	// 的前提是调用方保证每次结算失败只触发一次语义上的恢复。
	RestoreAll(ctx context.Context, tenant string, adjustments []StockAdjustment) error
}
