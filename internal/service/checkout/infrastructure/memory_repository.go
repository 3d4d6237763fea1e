package infrastructure

import (
	"context"
	"sort"
	"sync"

	"campus/internal/service/checkout/domain"
)

// MemoryOrderRepository 是 OrderRepository 的内存实现。
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id, tenant string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok || order.Tenant != tenant {
		return nil, domain.ErrOrderNotFound
	}
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	return &copied, nil
}

func (r *MemoryOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	copied.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

// All 返回仓储中的全部订单，测试用。
func (r *MemoryOrderRepository) All() []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		copied := *order
		copied.Items = append([]domain.OrderItem(nil), order.Items...)
		orders = append(orders, &copied)
	}
	return orders
}

// MemoryPaymentRepository 是 PaymentRepository 的内存实现。
type MemoryPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment
}

func NewMemoryPaymentRepository() *MemoryPaymentRepository {
	return &MemoryPaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (r *MemoryPaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Payment
	for _, payment := range r.payments {
		if payment.OrderID != orderID {
			continue
		}
		if latest == nil || payment.CreatedAt.After(latest.CreatedAt) {
			latest = payment
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (r *MemoryPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *payment
	r.payments[payment.ID] = &copied
	return nil
}

// MemoryStockRepository 是 StockRepository 的内存实现。
// 单把互斥锁将所有扣减串行化，与数据库实现的行锁语义一致:
// 先校验每一行，任意一行不足则不产生任何写入。
type MemoryStockRepository struct {
	mu    sync.Mutex
	lines map[string]*domain.StockLine
}

func NewMemoryStockRepository() *MemoryStockRepository {
	return &MemoryStockRepository{lines: make(map[string]*domain.StockLine)}
}

func (r *MemoryStockRepository) Add(line *domain.StockLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *line
	r.lines[line.Tenant+"/"+line.ProductID] = &copied
}

func (r *MemoryStockRepository) FindByProductIDs(ctx context.Context, tenant string, productIDs []string) ([]*domain.StockLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lines := make([]*domain.StockLine, 0, len(productIDs))
	for _, id := range productIDs {
		if line, ok := r.lines[tenant+"/"+id]; ok {
			copied := *line
			lines = append(lines, &copied)
		}
	}
	return lines, nil
}

func (r *MemoryStockRepository) DecrementAll(ctx context.Context, tenant string, adjustments []domain.StockAdjustment) error {
	sorted := make([]domain.StockAdjustment, len(adjustments))
	copy(sorted, adjustments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, adj := range sorted {
		line, ok := r.lines[tenant+"/"+adj.ProductID]
		if !ok {
			return domain.ErrProductNotFound
		}
		if line.AvailableQty < adj.Quantity {
			return domain.ErrInsufficientStock
		}
	}
	for _, adj := range sorted {
		r.lines[tenant+"/"+adj.ProductID].AvailableQty -= adj.Quantity
	}
	return nil
}

func (r *MemoryStockRepository) RestoreAll(ctx context.Context, tenant string, adjustments []domain.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, adj := range adjustments {
		if line, ok := r.lines[tenant+"/"+adj.ProductID]; ok {
			line.AvailableQty += adj.Quantity
		}
	}
	return nil
}

// Quantity 返回某商品当前可售数量，测试用。
func (r *MemoryStockRepository) Quantity(tenant, productID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if line, ok := r.lines[tenant+"/"+productID]; ok {
		return line.AvailableQty
	}
	return 0
}
