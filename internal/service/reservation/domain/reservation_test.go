package domain

import (
	"testing"
	"time"

	"campus/internal/pkg/apperr"
)

var base = time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

func TestValidateInterval(t *testing.T) {
	now := base.Add(-2 * time.Hour)

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		valid bool
	}{
		{"valid one hour", base, base.Add(time.Hour), true},
		{"missing start", time.Time{}, base.Add(time.Hour), false},
		{"missing end", base, time.Time{}, false},
		{"end equals start", base, base, false},
		{"end before start", base.Add(time.Hour), base, false},
		{"below minimum duration", base, base.Add(29 * time.Minute), false},
		{"exactly minimum duration", base, base.Add(30 * time.Minute), true},
		{"exactly maximum duration", base, base.Add(24 * time.Hour), true},
		{"above maximum duration", base, base.Add(24*time.Hour + time.Minute), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateInterval(c.start, c.end, now)
			if c.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !c.valid {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if apperr.KindOf(err) != apperr.KindValidation {
					t.Errorf("expected KindValidation, got %v", apperr.KindOf(err))
				}
			}
		})
	}
}

func TestValidateIntervalStartMustBeFuture(t *testing.T) {
	now := base
	if err := ValidateInterval(base, base.Add(time.Hour), now); err == nil {
		t.Error("start equal to now must be rejected")
	}
	if err := ValidateInterval(base.Add(-time.Hour), base.Add(time.Hour), now); err == nil {
		t.Error("start in the past must be rejected")
	}
	if err := ValidateInterval(base.Add(time.Minute), base.Add(time.Hour), now); err != nil {
		t.Errorf("start strictly in the future must pass, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	r := &Reservation{StartTime: base, EndTime: base.Add(time.Hour)}

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		overlap bool
	}{
		{"identical interval", base, base.Add(time.Hour), true},
		{"contained interval", base.Add(10 * time.Minute), base.Add(50 * time.Minute), true},
		{"straddles start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"straddles end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"adjacent before", base.Add(-time.Hour), base, false},
		{"adjacent after", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"disjoint before", base.Add(-3 * time.Hour), base.Add(-2 * time.Hour), false},
		{"disjoint after", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := r.Overlaps(c.start, c.end); got != c.overlap {
				t.Errorf("expected overlap=%v, got %v", c.overlap, got)
			}
		})
	}
}

func TestCancel(t *testing.T) {
	now := base.Add(-time.Hour)

	t.Run("owner cancels active reservation", func(t *testing.T) {
		r := NewReservation("room-1", "engineering", "alice", base, base.Add(time.Hour))
		changed, err := r.Cancel("alice", now)
		if err != nil || !changed {
			t.Fatalf("expected cancellation, got changed=%v err=%v", changed, err)
		}
		if r.Status != StatusCanceled {
			t.Errorf("expected CANCELED, got %s", r.Status)
		}
	})

	t.Run("cancel is idempotent", func(t *testing.T) {
		r := NewReservation("room-1", "engineering", "alice", base, base.Add(time.Hour))
		if _, err := r.Cancel("alice", now); err != nil {
			t.Fatal(err)
		}
		changed, err := r.Cancel("alice", now)
		if err != nil {
			t.Fatalf("second cancel must succeed, got %v", err)
		}
		if changed {
			t.Error("second cancel must not change state")
		}
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		r := NewReservation("room-1", "engineering", "alice", base, base.Add(time.Hour))
		_, err := r.Cancel("mallory", now)
		if apperr.KindOf(err) != apperr.KindForbidden {
			t.Errorf("expected KindForbidden, got %v", err)
		}
	})

	t.Run("ended reservation cannot be canceled", func(t *testing.T) {
		r := NewReservation("room-1", "engineering", "alice", base, base.Add(time.Hour))
		_, err := r.Cancel("alice", base.Add(2*time.Hour))
		if apperr.KindOf(err) != apperr.KindConflict {
			t.Errorf("expected KindConflict, got %v", err)
		}
	})
}
