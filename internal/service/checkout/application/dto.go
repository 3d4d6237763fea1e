package application

import (
	"campus/internal/service/checkout/domain"
)

// CheckoutCommand 是结算用例的输入。
// 租户与买家身份来自认证上下文，不来自请求体。
type CheckoutCommand struct {
	Tenant  string
	BuyerID string
	Items   []domain.CheckoutItem
}

// OrderItemView 是订单行项目的对外视图。
type OrderItemView struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// OrderView 是结算成功后返回的订单摘要。
type OrderView struct {
	ID         string          `json:"id"`
	BuyerID    string          `json:"buyerId"`
	Items      []OrderItemView `json:"items"`
	TotalCents int64           `json:"totalCents"`
	Status     string          `json:"status"`
}

func toOrderView(order *domain.Order) *OrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return &OrderView{
		ID:         order.ID,
		BuyerID:    order.BuyerID,
		Items:      items,
		TotalCents: order.TotalCents,
		Status:     string(order.Status),
	}
}
