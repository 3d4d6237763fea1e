package application

import (
	"time"

	"campus/internal/service/reservation/domain"
)

// CreateReservationCommand 是创建预约用例的输入。
// 租户与用户身份来自认证上下文，不来自请求体。
type CreateReservationCommand struct {
	ResourceID string
	Tenant     string
	UserID     string
	StartTime  time.Time
	EndTime    time.Time
}

// CancelReservationCommand 是取消预约用例的输入。
type CancelReservationCommand struct {
	ReservationID string
	Tenant        string
	UserID        string
}

// ReservationView 是对外返回的预约视图。
type ReservationView struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resourceId"`
	UserID     string    `json:"userId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Status     string    `json:"status"`
}

func toView(r *domain.Reservation) *ReservationView {
	return &ReservationView{
		ID:         r.ID,
		ResourceID: r.ResourceID,
		UserID:     r.UserID,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		Status:     string(r.Status),
	}
}
