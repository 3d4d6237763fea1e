package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"campus/internal/pkg/apperr"
	"campus/internal/service/reservation/domain"
	"campus/internal/service/reservation/infrastructure"
	"campus/internal/service/reservation/infrastructure/adapter"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("reservation-test")

type fixture struct {
	service      *ReservationService
	reservations *infrastructure.MemoryReservationRepository
}

func newFixture(t *testing.T, resources ...*domain.Resource) *fixture {
	t.Helper()
	resourceRepo := infrastructure.NewMemoryResourceRepository()
	for _, r := range resources {
		resourceRepo.Add(r)
	}
	reservationRepo := infrastructure.NewMemoryReservationRepository()
	service := NewReservationService(resourceRepo, reservationRepo, adapter.NewMemorySlotLocker(), nil, tracer)
	return &fixture{service: service, reservations: reservationRepo}
}

func room(id, tenant string) *domain.Resource {
	return &domain.Resource{ID: id, Tenant: tenant, Name: "Room " + id, Type: "room", Capacity: 10}
}

func futureSlot(offset time.Duration) (time.Time, time.Time) {
	start := time.Now().Add(24*time.Hour + offset)
	return start, start.Add(time.Hour)
}

func TestCreateReservation(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))
	start, end := futureSlot(0)

	view, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "alice", StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.ID == "" || view.Status != string(domain.StatusCreated) {
		t.Errorf("unexpected view: %+v", view)
	}
}

func TestCreateReservationUnknownResource(t *testing.T) {
	f := newFixture(t)
	start, end := futureSlot(0)

	_, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "ghost", Tenant: "eng", UserID: "alice", StartTime: start, EndTime: end,
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected KindNotFound, got %v", err)
	}
}

func TestCreateReservationWrongTenant(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))
	start, end := futureSlot(0)

	_, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "library", UserID: "alice", StartTime: start, EndTime: end,
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("tenant mismatch must behave like absence, got %v", err)
	}
}

func TestCreateReservationOverlapConflict(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))
	start, end := futureSlot(0)

	if _, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "alice", StartTime: start, EndTime: end,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "bob",
		StartTime: start.Add(30 * time.Minute), EndTime: end.Add(30 * time.Minute),
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected KindConflict, got %v", err)
	}

	// 紧邻区间不算重叠: [s,e) 半开。
	if _, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "bob", StartTime: end, EndTime: end.Add(time.Hour),
	}); err != nil {
		t.Errorf("adjacent interval must succeed, got %v", err)
	}
}

func TestConcurrentCreatesSameSlotExactlyOneWins(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))
	start, end := futureSlot(0)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Create(context.Background(), CreateReservationCommand{
				ResourceID: "r1", Tenant: "eng", UserID: "alice",
				StartTime: start, EndTime: end,
			})
		}(i)
	}
	wg.Wait()

	var won, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case apperr.IsKind(err, apperr.KindConflict):
			conflicts++
		default:
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if won != 1 {
		t.Errorf("expected exactly one winner, got %d", won)
	}
	if conflicts != attempts-1 {
		t.Errorf("expected %d conflicts, got %d", attempts-1, conflicts)
	}
}

func TestConcurrentCreatesDisjointSlotsAllSucceed(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))

	const slots = 12
	g := new(errgroup.Group)
	for i := 0; i < slots; i++ {
		start, end := futureSlot(time.Duration(i) * 2 * time.Hour)
		g.Go(func() error {
			_, err := f.service.Create(context.Background(), CreateReservationCommand{
				ResourceID: "r1", Tenant: "eng", UserID: "alice",
				StartTime: start, EndTime: end,
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Errorf("all pairwise disjoint reservations must succeed, got %v", err)
	}

	active, err := f.reservations.FindActiveByResource(context.Background(), "r1", "eng")
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != slots {
		t.Errorf("expected %d active reservations, got %d", slots, len(active))
	}
}

func TestCancelReservation(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))
	start, end := futureSlot(0)

	view, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "alice", StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatal(err)
	}

	cmd := CancelReservationCommand{ReservationID: view.ID, Tenant: "eng", UserID: "alice"}
	if err := f.service.Cancel(context.Background(), cmd); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 第二次取消是幂等空操作。
	if err := f.service.Cancel(context.Background(), cmd); err != nil {
		t.Errorf("second cancel must be a no-op, got %v", err)
	}

	stored, err := f.reservations.FindByID(context.Background(), view.ID, "eng")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.StatusCanceled {
		t.Errorf("expected CANCELED, got %s", stored.Status)
	}

	// 取消后的槽位可以被重新预约。
	if _, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "bob", StartTime: start, EndTime: end,
	}); err != nil {
		t.Errorf("slot freed by cancellation must be bookable, got %v", err)
	}
}

func TestCancelReservationErrors(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))
	start, end := futureSlot(0)

	view, err := f.service.Create(context.Background(), CreateReservationCommand{
		ResourceID: "r1", Tenant: "eng", UserID: "alice", StartTime: start, EndTime: end,
	})
	if err != nil {
		t.Fatal(err)
	}

	err = f.service.Cancel(context.Background(), CancelReservationCommand{
		ReservationID: "missing", Tenant: "eng", UserID: "alice",
	})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected KindNotFound, got %v", err)
	}

	err = f.service.Cancel(context.Background(), CancelReservationCommand{
		ReservationID: view.ID, Tenant: "eng", UserID: "mallory",
	})
	if !apperr.IsKind(err, apperr.KindForbidden) {
		t.Errorf("expected KindForbidden, got %v", err)
	}
}

func TestCancelEndedReservationConflict(t *testing.T) {
	f := newFixture(t, room("r1", "eng"))

	// 直接注入一个已结束的预约，绕过创建路径的未来性校验。
	ended := domain.NewReservation("r1", "eng", "alice",
		time.Now().Add(-3*time.Hour), time.Now().Add(-2*time.Hour))
	if err := f.reservations.Save(context.Background(), ended); err != nil {
		t.Fatal(err)
	}

	err := f.service.Cancel(context.Background(), CancelReservationCommand{
		ReservationID: ended.ID, Tenant: "eng", UserID: "alice",
	})
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("expected KindConflict, got %v", err)
	}
}
