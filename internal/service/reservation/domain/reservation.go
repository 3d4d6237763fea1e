package domain

import (
	"time"

	"campus/internal/pkg/apperr"

	"github.com/google/uuid"
)

// Status 定义了预约的生命周期状态。预约从不物理删除，
// 取消通过状态流转表达，保留审计轨迹。
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusCanceled Status = "CANCELED"
)

// 预约时长的业务边界。
const (
	MinDuration = 30 * time.Minute
	MaxDuration = 24 * time.Hour
)

// Reservation 是一次资源预约，时间区间为半开区间 [StartTime, EndTime)。
// 不变式: 同一 (resource, tenant) 下任意两个 CREATED 预约的区间互不重叠。
type Reservation struct {
	ID         string
	ResourceID string
	Tenant     string
	UserID     string
	StartTime  time.Time
	EndTime    time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInterval 按从廉价到昂贵的顺序校验预约区间，
// 任何一步失败都能让请求在取锁之前被拒绝。
func ValidateInterval(start, end time.Time, now time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.New(apperr.KindValidation, "start and end times are required")
	}
	if !end.After(start) {
		return apperr.New(apperr.KindValidation, "end time must be after start time")
	}
	duration := end.Sub(start)
	if duration < MinDuration {
		return apperr.Newf(apperr.KindValidation, "reservation must last at least %v", MinDuration)
	}
	if duration > MaxDuration {
		return apperr.Newf(apperr.KindValidation, "reservation must not exceed %v", MaxDuration)
	}
	if !start.After(now) {
		return apperr.New(apperr.KindValidation, "start time must be in the future")
	}
	return nil
}

// NewReservation 创建处于 CREATED 状态的预约实体。
// 调用方必须先通过 ValidateInterval 与重叠检查。
func NewReservation(resourceID, tenant, userID string, start, end time.Time) *Reservation {
	now := time.Now()
	return &Reservation{
		ID:         uuid.New().String(),
		ResourceID: resourceID,
		Tenant:     tenant,
		UserID:     userID,
		StartTime:  start,
		EndTime:    end,
		Status:     StatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Overlaps 判断两个半开区间是否共享至少一个时刻:
// [s1,e1) 与 [s2,e2) 重叠 当且仅当 s1 < e2 且 s2 < e1。
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}

// Cancel 将预约流转为 CANCELED。
// 返回值 changed 表示状态是否发生了变化，重复取消是幂等的空操作。
func (r *Reservation) Cancel(userID string, now time.Time) (changed bool, err error) {
	if r.UserID != userID {
		return false, apperr.New(apperr.KindForbidden, "only the reservation owner may cancel it")
	}
	if r.Status == StatusCanceled {
		return false, nil
	}
	if !r.EndTime.After(now) {
		return false, apperr.New(apperr.KindConflict, "reservation has already ended")
	}
	r.Status = StatusCanceled
	r.UpdatedAt = now
	return true, nil
}
