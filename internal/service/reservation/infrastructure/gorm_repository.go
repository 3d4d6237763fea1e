package infrastructure

import (
	"context"
	"errors"

	"campus/internal/service/reservation/domain"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormResourceRepository 是 ResourceRepository 的 GORM 实现。
type GormResourceRepository struct {
	db *gorm.DB
}

func NewGormResourceRepository(db *gorm.DB) *GormResourceRepository {
	return &GormResourceRepository{db: db}
}

func (r *GormResourceRepository) FindByID(ctx context.Context, id, tenant string) (*domain.Resource, error) {
	var model ResourceModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant = ?", id, tenant).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, pkgerrors.Wrap(err, "query resource")
	}
	return ToDomainResource(&model), nil
}

// GormReservationRepository 是 ReservationRepository 的 GORM 实现。
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) FindByID(ctx context.Context, id, tenant string) (*domain.Reservation, error) {
	var model ReservationModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant = ?", id, tenant).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, pkgerrors.Wrap(err, "query reservation")
	}
	return ToDomainReservation(&model), nil
}

func (r *GormReservationRepository) FindActiveByResource(ctx context.Context, resourceID, tenant string) ([]*domain.Reservation, error) {
	var models []ReservationModel
	err := r.db.WithContext(ctx).
		Where("resource_id = ? AND tenant = ? AND status = ?", resourceID, tenant, string(domain.StatusCreated)).
		Find(&models).Error
	if err != nil {
		return nil, pkgerrors.Wrap(err, "query active reservations")
	}

	reservations := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		reservations = append(reservations, ToDomainReservation(&models[i]))
	}
	return reservations, nil
}

func (r *GormReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	model := FromDomainReservation(reservation)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return pkgerrors.Wrap(err, "save reservation")
	}
	return nil
}
