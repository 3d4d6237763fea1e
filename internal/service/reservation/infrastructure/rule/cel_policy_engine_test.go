package rule

import (
	"testing"

	"campus/internal/pkg/apperr"
	"campus/internal/service/reservation/domain"
)

func TestCelPolicyEngine(t *testing.T) {
	engine, err := NewCelPolicyEngine(map[string]string{
		"engineering": "duration_minutes <= 240 && start_hour >= 8 && start_hour < 22",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok := domain.BookingFact{ResourceType: "lab", Capacity: 20, DurationMinutes: 120, StartHour: 10, Weekday: 2}
	if err := engine.Evaluate("engineering", ok); err != nil {
		t.Errorf("expected policy to pass, got %v", err)
	}

	tooLong := ok
	tooLong.DurationMinutes = 300
	if err := engine.Evaluate("engineering", tooLong); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected KindValidation, got %v", err)
	}

	tooEarly := ok
	tooEarly.StartHour = 6
	if err := engine.Evaluate("engineering", tooEarly); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected KindValidation, got %v", err)
	}

	// 未配置策略的租户一律放行。
	if err := engine.Evaluate("library", tooLong); err != nil {
		t.Errorf("tenant without policy must pass, got %v", err)
	}
}

func TestCelPolicyEngineRejectsBrokenExpressions(t *testing.T) {
	if _, err := NewCelPolicyEngine(map[string]string{"x": "duration_minutes +"}); err == nil {
		t.Error("expected compile error for malformed expression")
	}
	if _, err := NewCelPolicyEngine(map[string]string{"x": "duration_minutes + 1"}); err == nil {
		t.Error("expected error for non-bool expression")
	}
}
