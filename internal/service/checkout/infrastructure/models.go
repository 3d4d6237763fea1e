package infrastructure

import "time"

// OrderModel 是 Order 聚合在数据库中的表示。
// 行项目序列化为 JSON 存储，订单内不存在按行查询的需求。
type OrderModel struct {
	ID         string `gorm:"primaryKey;size:36"`
	Tenant     string `gorm:"size:64;index:idx_orders_tenant"`
	BuyerID    string `gorm:"size:64"`
	Items      string `gorm:"type:json"`
	TotalCents int64
	Status     string `gorm:"size:16"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// PaymentModel 是 Payment 在数据库中的表示。
type PaymentModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	OrderID     string `gorm:"size:36;index:idx_payments_order"`
	AmountCents int64
	Status      string `gorm:"size:16"`
	GatewayRef  string `gorm:"size:64"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (PaymentModel) TableName() string {
	return "payments"
}

// StockLineModel 是 StockLine 在数据库中的表示。
// (product_id, tenant) 为复合主键，扣减路径对它加 FOR UPDATE 行锁。
type StockLineModel struct {
	ProductID      string `gorm:"primaryKey;size:36"`
	Tenant         string `gorm:"primaryKey;size:64"`
	AvailableQty   int
	UnitPriceCents int64
}

func (StockLineModel) TableName() string {
	return "stock_lines"
}
