package domain

import (
	"context"

	"campus/internal/pkg/apperr"
)

// 仓储层统一返回的缺失错误。
var (
	ErrResourceNotFound    = apperr.New(apperr.KindNotFound, "resource not found")
	ErrReservationNotFound = apperr.New(apperr.KindNotFound, "reservation not found")
)

// ResourceRepository 是资源查询的出站端口。
type ResourceRepository interface {
	FindByID(ctx context.Context, id, tenant string) (*Resource, error)
}

// ReservationRepository 是预约持久化的出站端口。
// 没有删除操作: 生命周期只通过状态表达。
type ReservationRepository interface {
	FindByID(ctx context.Context, id, tenant string) (*Reservation, error)
	// FindActiveByResource 返回某资源下所有 CREATED 状态的预约，
	// 是重叠检查的输入快照。
	FindActiveByResource(ctx context.Context, resourceID, tenant string) ([]*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error
}

// SlotLocker 对 (tenant, resource) 维度提供互斥。
// Acquire 阻塞直至持锁或超出实现方的等待上限；
// 返回的 release 必须在事务结束后调用，且可安全重复调用。
type SlotLocker interface {
	Acquire(ctx context.Context, tenant, resourceID string) (release func(), err error)
}
