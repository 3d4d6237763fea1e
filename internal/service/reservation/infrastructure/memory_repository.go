package infrastructure

import (
	"context"
	"sync"

	"campus/internal/service/reservation/domain"
)

// MemoryResourceRepository 是 ResourceRepository 的内存实现，
// 服务于单机部署与测试。
type MemoryResourceRepository struct {
	mu        sync.RWMutex
	resources map[string]*domain.Resource
}

func NewMemoryResourceRepository() *MemoryResourceRepository {
	return &MemoryResourceRepository{resources: make(map[string]*domain.Resource)}
}

func (r *MemoryResourceRepository) Add(resource *domain.Resource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resources[resource.Tenant+"/"+resource.ID] = resource
}

func (r *MemoryResourceRepository) FindByID(ctx context.Context, id, tenant string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	resource, ok := r.resources[tenant+"/"+id]
	if !ok {
		return nil, domain.ErrResourceNotFound
	}
	copied := *resource
	return &copied, nil
}

// MemoryReservationRepository 是 ReservationRepository 的内存实现。
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{reservations: make(map[string]*domain.Reservation)}
}

func (r *MemoryReservationRepository) FindByID(ctx context.Context, id, tenant string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reservation, ok := r.reservations[id]
	if !ok || reservation.Tenant != tenant {
		return nil, domain.ErrReservationNotFound
	}
	copied := *reservation
	return &copied, nil
}

func (r *MemoryReservationRepository) FindActiveByResource(ctx context.Context, resourceID, tenant string) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var active []*domain.Reservation
	for _, reservation := range r.reservations {
		if reservation.ResourceID == resourceID &&
			reservation.Tenant == tenant &&
			reservation.Status == domain.StatusCreated {
			copied := *reservation
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (r *MemoryReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *reservation
	r.reservations[reservation.ID] = &copied
	return nil
}
