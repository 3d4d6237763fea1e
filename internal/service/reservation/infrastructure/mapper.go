package infrastructure

import "campus/internal/service/reservation/domain"

// ToDomainResource 将数据库模型转换为领域模型。
func ToDomainResource(model *ResourceModel) *domain.Resource {
	if model == nil {
		return nil
	}
	return &domain.Resource{
		ID:       model.ID,
		Tenant:   model.Tenant,
		Name:     model.Name,
		Type:     model.Type,
		Capacity: model.Capacity,
	}
}

// ToDomainReservation 将数据库模型转换为领域模型。
func ToDomainReservation(model *ReservationModel) *domain.Reservation {
	if model == nil {
		return nil
	}
	return &domain.Reservation{
		ID:         model.ID,
		ResourceID: model.ResourceID,
		Tenant:     model.Tenant,
		UserID:     model.UserID,
		StartTime:  model.StartTime,
		EndTime:    model.EndTime,
		Status:     domain.Status(model.Status),
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// FromDomainReservation 将领域模型转换为数据库模型，用于插入和更新。
func FromDomainReservation(r *domain.Reservation) *ReservationModel {
	if r == nil {
		return nil
	}
	return &ReservationModel{
		ID:         r.ID,
		ResourceID: r.ResourceID,
		Tenant:     r.Tenant,
		UserID:     r.UserID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Status:     string(r.Status),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
