package domain

// StockLine 是某租户下一个商品的可售库存。
// 不变式: AvailableQty 永不为负。扣减按订单事务性进行，补偿时恢复。
type StockLine struct {
	ProductID      string
	Tenant         string
	AvailableQty   int
	UnitPriceCents int64
}

// StockAdjustment 描述对单个商品的一次数量调整。
type StockAdjustment struct {
	ProductID string
	Quantity  int
}
