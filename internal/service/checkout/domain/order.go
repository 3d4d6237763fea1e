package domain

import (
	"time"

	"campus/internal/pkg/apperr"

	"github.com/google/uuid"
)

// OrderStatus 定义了订单的生命周期状态。
// 订单一旦到达 CONFIRMED 或 CANCELED 即不再变化。
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// OrderItem 是订单中的一个行项目。金额以分为单位。
type OrderItem struct {
	ProductID      string
	Quantity       int
	UnitPriceCents int64
}

// Order 是结算流程的聚合根。
// 状态流转只由结算编排器驱动。
type Order struct {
	ID         string
	Tenant     string
	BuyerID    string
	Items      []OrderItem
	TotalCents int64
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateItems 校验结算请求的行项目形状。
func ValidateItems(items []CheckoutItem) error {
	if len(items) == 0 {
		return apperr.New(apperr.KindValidation, "checkout requires at least one item")
	}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" {
			return apperr.New(apperr.KindValidation, "item product id is required")
		}
		if item.Quantity <= 0 {
			return apperr.Newf(apperr.KindValidation, "item %s quantity must be positive", item.ProductID)
		}
		if seen[item.ProductID] {
			return apperr.Newf(apperr.KindValidation, "item %s appears more than once", item.ProductID)
		}
		seen[item.ProductID] = true
	}
	return nil
}

// CheckoutItem 是结算请求中的一个条目，价格尚未确定。
type CheckoutItem struct {
	ProductID string
	Quantity  int
}

// NewOrder 创建处于 PENDING 状态的订单，总额为各行金额之和。
func NewOrder(tenant, buyerID string, items []OrderItem) (*Order, error) {
	if tenant == "" || buyerID == "" {
		return nil, apperr.New(apperr.KindValidation, "tenant and buyer are required")
	}
	if len(items) == 0 {
		return nil, apperr.New(apperr.KindValidation, "order requires at least one item")
	}

	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.UnitPriceCents
	}

	now := time.Now()
	return &Order{
		ID:         uuid.New().String(),
		Tenant:     tenant,
		BuyerID:    buyerID,
		Items:      items,
		TotalCents: total,
		Status:     OrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Confirm 将订单推进到 CONFIRMED。这是结算流程的提交点。
func (o *Order) Confirm() error {
	if o.Status != OrderStatusPending {
		return apperr.Newf(apperr.KindInternal, "cannot confirm order in state %s", o.Status)
	}
	o.Status = OrderStatusConfirmed
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel 将订单标记为 CANCELED。
// 对已取消订单重复调用是幂等空操作，补偿可以安全重跑。
func (o *Order) Cancel() error {
	if o.Status == OrderStatusCanceled {
		return nil
	}
	if o.Status == OrderStatusConfirmed {
		return apperr.New(apperr.KindInternal, "confirmed order cannot be canceled")
	}
	o.Status = OrderStatusCanceled
	o.UpdatedAt = time.Now()
	return nil
}
