package domain

import "time"

// ConfirmedItem 是事件中的行项目视图。
type ConfirmedItem struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// CheckoutConfirmed 在订单到达提交点后发布。
// 发布是尽力而为的: 失败只记录日志，绝不回滚已确认的订单。
type CheckoutConfirmed struct {
	OrderID     string          `json:"orderId"`
	Tenant      string          `json:"tenant"`
	BuyerID     string          `json:"buyerId"`
	TotalCents  int64           `json:"totalCents"`
	Items       []ConfirmedItem `json:"items"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}

// NewCheckoutConfirmed 从已确认订单构造事件。
func NewCheckoutConfirmed(order *Order) *CheckoutConfirmed {
	items := make([]ConfirmedItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ConfirmedItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return &CheckoutConfirmed{
		OrderID:     order.ID,
		Tenant:      order.Tenant,
		BuyerID:     order.BuyerID,
		TotalCents:  order.TotalCents,
		Items:       items,
		ConfirmedAt: time.Now(),
	}
}
