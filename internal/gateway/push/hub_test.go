package push

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"campus/internal/service/checkout/domain"
)

func TestHubDeliversToAllSubscribers(t *testing.T) {
	hub := NewHub()

	ch1, cancel1 := hub.Subscribe()
	defer cancel1()
	ch2, cancel2 := hub.Subscribe()
	defer cancel2()

	event := domain.NewCheckoutConfirmed(&domain.Order{ID: "order-1", Tenant: "shop", TotalCents: 700})
	if err := hub.PublishCheckoutConfirmed(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, ch := range []<-chan []byte{ch1, ch2} {
		select {
		case data := <-ch:
			var got domain.CheckoutConfirmed
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("malformed payload: %v", err)
			}
			if got.OrderID != "order-1" {
				t.Errorf("expected order-1, got %s", got.OrderID)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestHubStopsDeliveringAfterCancel(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe()
	cancel()

	event := domain.NewCheckoutConfirmed(&domain.Order{ID: "order-2", Tenant: "shop"})
	if err := hub.PublishCheckoutConfirmed(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := <-ch; ok {
		t.Error("canceled subscriber must not receive further events")
	}
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cancel := hub.Subscribe()
	defer cancel()

	// 填满订阅者缓冲后继续发布，发布方必须不阻塞。
	event := domain.NewCheckoutConfirmed(&domain.Order{ID: "order-3", Tenant: "shop"})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 64; i++ {
			hub.PublishCheckoutConfirmed(context.Background(), event)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}
	if len(ch) != cap(ch) {
		t.Errorf("expected a full buffer of %d, got %d", cap(ch), len(ch))
	}
}
