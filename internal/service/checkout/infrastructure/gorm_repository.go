package infrastructure

import (
	"context"
	"errors"
	"sort"

	"campus/internal/service/checkout/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id, tenant string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant = ?", id, tenant).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, pkgerrors.Wrap(err, "query order")
	}
	return ToDomainOrder(&model)
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model, err := FromDomainOrder(order)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "save order")
	}
	return nil
}

// GormPaymentRepository 是 PaymentRepository 的 GORM 实现。
type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	var model PaymentModel
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(err, "query payment")
	}
	return ToDomainPayment(&model), nil
}

func (r *GormPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	if err := r.db.WithContext(ctx).Save(FromDomainPayment(payment)).Error; err != nil {
		return pkgerrors.Wrap(err, "save payment")
	}
	return nil
}

// GormStockRepository 是 StockRepository 的 GORM 实现。
type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) FindByProductIDs(ctx context.Context, tenant string, productIDs []string) ([]*domain.StockLine, error) {
	var models []StockLineModel
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND product_id IN ?", tenant, productIDs).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query stock lines")
	}
	lines := make([]*domain.StockLine, 0, len(models))
	for i := range models {
		lines = append(lines, ToDomainStockLine(&models[i]))
	}
	return lines, nil
}

// DecrementAll 在单个事务内完成整单扣减:
// 按商品 id 升序逐行 SELECT ... FOR UPDATE（固定顺序避免跨订单死锁），
// 任何写入前先校验每一行的数量，任意一行不足即回滚整个事务。
func (r *GormStockRepository) DecrementAll(ctx context.Context, tenant string, adjustments []domain.StockAdjustment) error {
	sorted := sortedAdjustments(adjustments)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked := make([]StockLineModel, 0, len(sorted))
		for _, adj := range sorted {
			var model StockLineModel
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("product_id = ? AND tenant = ?", adj.ProductID, tenant).
				First(&model).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrProductNotFound
				}
				return pkgerrors.Wrap(err, "lock stock line")
			}
			if model.AvailableQty < adj.Quantity {
				return domain.ErrInsufficientStock
			}
			locked = append(locked, model)
		}

		for i, adj := range sorted {
			err := tx.Model(&StockLineModel{}).
				Where("product_id = ? AND tenant = ?", adj.ProductID, tenant).
				Update("available_qty", locked[i].AvailableQty-adj.Quantity).Error
			if err != nil {
				return pkgerrors.Wrap(err, "decrement stock line")
			}
		}
		return nil
	})
}

// RestoreAll 恢复一次扣减。UPDATE 自带行锁，按升序执行与并发扣减保持同一顺序。
func (r *GormStockRepository) RestoreAll(ctx context.Context, tenant string, adjustments []domain.StockAdjustment) error {
	sorted := sortedAdjustments(adjustments)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, adj := range sorted {
			err := tx.Model(&StockLineModel{}).
				Where("product_id = ? AND tenant = ?", adj.ProductID, tenant).
				Update("available_qty", gorm.Expr("available_qty + ?", adj.Quantity)).Error
			if err != nil {
				return pkgerrors.Wrap(err, "restore stock line")
			}
		}
		return nil
	})
}

func sortedAdjustments(adjustments []domain.StockAdjustment) []domain.StockAdjustment {
	sorted := make([]domain.StockAdjustment, len(adjustments))
	copy(sorted, adjustments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductID < sorted[j].ProductID })
	return sorted
}
