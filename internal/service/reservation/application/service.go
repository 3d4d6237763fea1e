package application

import (
	"context"
	"time"

	"campus/internal/pkg/apperr"
	"campus/internal/pkg/logger"
	"campus/internal/pkg/metrics"
	"campus/internal/service/reservation/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReservationService 编排预约的创建与取消。
// 创建路径上的重叠检查在 (tenant, resource) 级互斥锁内执行，
// 并发请求被串行化: 先到者基于一致快照判定并提交，后到者在锁释放后
// 基于已提交状态重新判定，槽位被占时得到 Conflict。
type ReservationService struct {
	resources    domain.ResourceRepository
	reservations domain.ReservationRepository
	locker       domain.SlotLocker
	policy       domain.BookingPolicy
	tracer       trace.Tracer
	now          func() time.Time
}

func NewReservationService(
	resources domain.ResourceRepository,
	reservations domain.ReservationRepository,
	locker domain.SlotLocker,
	policy domain.BookingPolicy,
	tracer trace.Tracer,
) *ReservationService {
	return &ReservationService{
		resources:    resources,
		reservations: reservations,
		locker:       locker,
		policy:       policy,
		tracer:       tracer,
		now:          time.Now,
	}
}

// Create 创建一个新预约。
// 校验顺序从廉价到昂贵，确保注定失败的请求不去抢锁:
// 形状 → 区间 → 时长边界 → 未来性 → 资源存在 → 租户策略 → 锁 → 重叠。
func (s *ReservationService) Create(ctx context.Context, cmd CreateReservationCommand) (*ReservationView, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.Create")
	defer span.End()
	span.SetAttributes(
		attribute.String("resource.id", cmd.ResourceID),
		attribute.String("tenant", cmd.Tenant),
	)

	if cmd.ResourceID == "" || cmd.Tenant == "" || cmd.UserID == "" {
		return nil, apperr.New(apperr.KindValidation, "resource, tenant and user are required")
	}
	if err := domain.ValidateInterval(cmd.StartTime, cmd.EndTime, s.now()); err != nil {
		return nil, err
	}

	resource, err := s.resources.FindByID(ctx, cmd.ResourceID, cmd.Tenant)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.policy != nil {
		fact := domain.BookingFact{
			ResourceType:    resource.Type,
			Capacity:        resource.Capacity,
			DurationMinutes: int64(cmd.EndTime.Sub(cmd.StartTime) / time.Minute),
			StartHour:       cmd.StartTime.Hour(),
			Weekday:         int(cmd.StartTime.Weekday()),
		}
		if err := s.policy.Evaluate(cmd.Tenant, fact); err != nil {
			span.AddEvent("Rejected by tenant booking policy")
			return nil, err
		}
	}

	// 锁按 (tenant, resource) 划分，不相关资源的请求互不竞争。
	release, err := s.locker.Acquire(ctx, cmd.Tenant, cmd.ResourceID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Slot lock acquisition failed")
		return nil, apperr.Wrap(apperr.KindInternal, "acquire slot lock", err)
	}
	defer release()

	active, err := s.reservations.FindActiveByResource(ctx, cmd.ResourceID, cmd.Tenant)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Wrap(apperr.KindInternal, "load active reservations", err)
	}
	for _, existing := range active {
		if existing.Overlaps(cmd.StartTime, cmd.EndTime) {
			metrics.ReservationConflicts.Inc()
			span.AddEvent("Overlapping reservation found")
			return nil, apperr.Newf(apperr.KindConflict,
				"resource %s is already reserved in the requested interval", cmd.ResourceID)
		}
	}

	reservation := domain.NewReservation(cmd.ResourceID, cmd.Tenant, cmd.UserID, cmd.StartTime, cmd.EndTime)
	if err := s.reservations.Save(ctx, reservation); err != nil {
		span.RecordError(err)
		return nil, apperr.Wrap(apperr.KindInternal, "save reservation", err)
	}

	metrics.ReservationsCreated.Inc()
	logger.Ctx(ctx).Info().
		Str("reservation", reservation.ID).
		Str("resource", cmd.ResourceID).
		Str("tenant", cmd.Tenant).
		Msg("Reservation created")

	return toView(reservation), nil
}

// Cancel 取消一个预约。重复取消是幂等的空操作。
func (s *ReservationService) Cancel(ctx context.Context, cmd CancelReservationCommand) error {
	ctx, span := s.tracer.Start(ctx, "reservation.Cancel")
	defer span.End()
	span.SetAttributes(attribute.String("reservation.id", cmd.ReservationID))

	reservation, err := s.reservations.FindByID(ctx, cmd.ReservationID, cmd.Tenant)
	if err != nil {
		return err
	}

	changed, err := reservation.Cancel(cmd.UserID, s.now())
	if err != nil {
		if apperr.IsKind(err, apperr.KindForbidden) {
			// 所有权不匹配可能是越权探测，留痕便于审计。
			logger.Ctx(ctx).Warn().
				Str("reservation", cmd.ReservationID).
				Str("caller", cmd.UserID).
				Str("owner", reservation.UserID).
				Msg("Cancellation rejected: caller is not the owner")
		}
		span.RecordError(err)
		return err
	}
	if !changed {
		span.AddEvent("Reservation already canceled, no-op")
		return nil
	}

	if err := s.reservations.Save(ctx, reservation); err != nil {
		span.RecordError(err)
		return apperr.Wrap(apperr.KindInternal, "save canceled reservation", err)
	}

	logger.Ctx(ctx).Info().Str("reservation", cmd.ReservationID).Msg("Reservation canceled")
	return nil
}
