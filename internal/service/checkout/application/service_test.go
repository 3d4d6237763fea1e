package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"campus/internal/pkg/apperr"
	"campus/internal/service/checkout/domain"
	"campus/internal/service/checkout/domain/port"
	"campus/internal/service/checkout/infrastructure"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("checkout-test")

// fakeGateway 记录授权与撤销调用，可配置为拒绝授权。
type fakeGateway struct {
	mu         sync.Mutex
	decline    bool
	authorized []string
	canceled   []string
}

func (g *fakeGateway) Authorize(ctx context.Context, orderID string, amountCents int64) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.decline {
		return "", port.ErrPaymentDeclined
	}
	ref := "auth-" + uuid.New().String()
	g.authorized = append(g.authorized, ref)
	return ref, nil
}

func (g *fakeGateway) Cancel(ctx context.Context, gatewayRef string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceled = append(g.canceled, gatewayRef)
	return nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []*domain.CheckoutConfirmed
}

func (p *capturingPublisher) PublishCheckoutConfirmed(ctx context.Context, event *domain.CheckoutConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type failingPublisher struct{}

func (p *failingPublisher) PublishCheckoutConfirmed(ctx context.Context, event *domain.CheckoutConfirmed) error {
	return errors.New("broker unavailable")
}

type checkoutFixture struct {
	service   *CheckoutApplicationService
	orders    *infrastructure.MemoryOrderRepository
	payments  *infrastructure.MemoryPaymentRepository
	stock     *infrastructure.MemoryStockRepository
	gateway   *fakeGateway
	publisher *capturingPublisher
}

func newCheckoutFixture(t *testing.T, lines ...*domain.StockLine) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{
		orders:    infrastructure.NewMemoryOrderRepository(),
		payments:  infrastructure.NewMemoryPaymentRepository(),
		stock:     infrastructure.NewMemoryStockRepository(),
		gateway:   &fakeGateway{},
		publisher: &capturingPublisher{},
	}
	for _, line := range lines {
		f.stock.Add(line)
	}
	f.service = NewCheckoutApplicationService(f.orders, f.payments, f.stock, f.gateway, f.publisher, tracer)
	return f
}

func stockLine(productID string, qty int, priceCents int64) *domain.StockLine {
	return &domain.StockLine{ProductID: productID, Tenant: "shop", AvailableQty: qty, UnitPriceCents: priceCents}
}

func buy(items ...domain.CheckoutItem) CheckoutCommand {
	return CheckoutCommand{Tenant: "shop", BuyerID: "alice", Items: items}
}

func TestCheckoutConfirmsOrder(t *testing.T) {
	f := newCheckoutFixture(t, stockLine("p1", 10, 500), stockLine("p2", 5, 1200))

	view, err := f.service.Checkout(context.Background(), buy(
		domain.CheckoutItem{ProductID: "p1", Quantity: 2},
		domain.CheckoutItem{ProductID: "p2", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if view.Status != string(domain.OrderStatusConfirmed) {
		t.Errorf("expected CONFIRMED, got %s", view.Status)
	}
	if view.TotalCents != 2*500+1200 {
		t.Errorf("unexpected total: %d", view.TotalCents)
	}
	if got := f.stock.Quantity("shop", "p1"); got != 8 {
		t.Errorf("expected p1 stock 8, got %d", got)
	}
	if got := f.stock.Quantity("shop", "p2"); got != 4 {
		t.Errorf("expected p2 stock 4, got %d", got)
	}

	stored, err := f.orders.FindByID(context.Background(), view.ID, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.OrderStatusConfirmed {
		t.Errorf("persisted order must be CONFIRMED, got %s", stored.Status)
	}

	payment, err := f.payments.FindByOrderID(context.Background(), view.ID)
	if err != nil || payment == nil {
		t.Fatalf("expected a payment record, got %v, %v", payment, err)
	}
	if payment.Status != domain.PaymentStatusAuthorized {
		t.Errorf("expected AUTHORIZED payment, got %s", payment.Status)
	}

	if len(f.publisher.events) != 1 || f.publisher.events[0].OrderID != view.ID {
		t.Errorf("expected one checkout-confirmed event for the order, got %+v", f.publisher.events)
	}
}

func TestCheckoutValidation(t *testing.T) {
	f := newCheckoutFixture(t, stockLine("p1", 10, 500))

	cases := []struct {
		name  string
		items []domain.CheckoutItem
	}{
		{"no items", nil},
		{"missing product id", []domain.CheckoutItem{{ProductID: "", Quantity: 1}}},
		{"zero quantity", []domain.CheckoutItem{{ProductID: "p1", Quantity: 0}}},
		{"negative quantity", []domain.CheckoutItem{{ProductID: "p1", Quantity: -2}}},
		{"duplicate product", []domain.CheckoutItem{{ProductID: "p1", Quantity: 1}, {ProductID: "p1", Quantity: 2}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := f.service.Checkout(context.Background(), buy(c.items...))
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected KindValidation, got %v", err)
			}
		})
	}

	_, err := f.service.Checkout(context.Background(), buy(domain.CheckoutItem{ProductID: "ghost", Quantity: 1}))
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("unknown product: expected KindNotFound, got %v", err)
	}
}

func TestCheckoutPaymentDeclined(t *testing.T) {
	f := newCheckoutFixture(t, stockLine("p1", 10, 500))
	f.gateway.decline = true

	_, err := f.service.Checkout(context.Background(), buy(domain.CheckoutItem{ProductID: "p1", Quantity: 1}))
	if !apperr.IsKind(err, apperr.KindPaymentDeclined) {
		t.Fatalf("expected KindPaymentDeclined, got %v", err)
	}

	// 订单以 CANCELED 收场，库存不受影响。
	order := f.singleOrder(t)
	if order.Status != domain.OrderStatusCanceled {
		t.Errorf("expected CANCELED order, got %s", order.Status)
	}
	if got := f.stock.Quantity("shop", "p1"); got != 10 {
		t.Errorf("stock must be unchanged, got %d", got)
	}

	payment, err := f.payments.FindByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if payment == nil || payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED payment attempt, got %+v", payment)
	}
	if len(f.publisher.events) != 0 {
		t.Error("no event may be published for a failed checkout")
	}
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newCheckoutFixture(t, stockLine("p1", 3, 500), stockLine("p2", 100, 100))

	_, err := f.service.Checkout(context.Background(), buy(
		domain.CheckoutItem{ProductID: "p2", Quantity: 2},
		domain.CheckoutItem{ProductID: "p1", Quantity: 5},
	))
	if !apperr.IsKind(err, apperr.KindInsufficientStock) {
		t.Fatalf("expected KindInsufficientStock, got %v", err)
	}

	order := f.singleOrder(t)
	if order.Status != domain.OrderStatusCanceled {
		t.Errorf("expected CANCELED order, got %s", order.Status)
	}

	// 支付授权被补偿撤销。
	payment, err := f.payments.FindByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if payment == nil || payment.Status != domain.PaymentStatusCanceled {
		t.Errorf("expected CANCELED payment, got %+v", payment)
	}
	if len(f.gateway.canceled) != 1 {
		t.Errorf("expected one gateway cancellation, got %d", len(f.gateway.canceled))
	}

	// 所有库存行保持不变，包括数量充足的那一行。
	if got := f.stock.Quantity("shop", "p1"); got != 3 {
		t.Errorf("p1 stock must remain 3, got %d", got)
	}
	if got := f.stock.Quantity("shop", "p2"); got != 100 {
		t.Errorf("p2 stock must remain 100, got %d", got)
	}
}

func TestCheckoutSucceedsWhenPublishFails(t *testing.T) {
	f := newCheckoutFixture(t, stockLine("p1", 10, 500))
	f.service = NewCheckoutApplicationService(
		f.orders, f.payments, f.stock, f.gateway,
		&failingPublisher{}, tracer,
	)

	view, err := f.service.Checkout(context.Background(), buy(domain.CheckoutItem{ProductID: "p1", Quantity: 2}))
	if err != nil {
		t.Fatalf("publish failure must not fail the checkout, got %v", err)
	}
	if view.Status != string(domain.OrderStatusConfirmed) {
		t.Errorf("expected CONFIRMED, got %s", view.Status)
	}

	// 发布是提交点之后的尽力而为步骤，失败不得回滚任何正向步骤。
	stored, err := f.orders.FindByID(context.Background(), view.ID, "shop")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.OrderStatusConfirmed {
		t.Errorf("persisted order must stay CONFIRMED, got %s", stored.Status)
	}
	if got := f.stock.Quantity("shop", "p1"); got != 8 {
		t.Errorf("stock must stay decremented at 8, got %d", got)
	}
	payment, err := f.payments.FindByOrderID(context.Background(), view.ID)
	if err != nil {
		t.Fatal(err)
	}
	if payment == nil || payment.Status != domain.PaymentStatusAuthorized {
		t.Errorf("payment must stay AUTHORIZED, got %+v", payment)
	}
	if len(f.gateway.canceled) != 0 {
		t.Errorf("no authorization may be voided, got %d cancellations", len(f.gateway.canceled))
	}
}

func TestConcurrentCheckoutsNoLostUpdates(t *testing.T) {
	const (
		initial  = 500
		attempts = 100
		perOrder = 2
	)
	f := newCheckoutFixture(t, stockLine("p1", initial, 500))

	g := new(errgroup.Group)
	for i := 0; i < attempts; i++ {
		g.Go(func() error {
			_, err := f.service.Checkout(context.Background(), buy(
				domain.CheckoutItem{ProductID: "p1", Quantity: perOrder},
			))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("all checkouts had sufficient stock, got %v", err)
	}

	want := initial - attempts*perOrder
	if got := f.stock.Quantity("shop", "p1"); got != want {
		t.Errorf("expected final stock %d, got %d", want, got)
	}
}

func TestConcurrentCheckoutsLastUnit(t *testing.T) {
	f := newCheckoutFixture(t, stockLine("p1", 1, 500))

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.service.Checkout(context.Background(), buy(
				domain.CheckoutItem{ProductID: "p1", Quantity: 1},
			))
		}(i)
	}
	wg.Wait()

	var confirmed, insufficient int
	for _, err := range results {
		switch {
		case err == nil:
			confirmed++
		case apperr.IsKind(err, apperr.KindInsufficientStock):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if confirmed != 1 || insufficient != 1 {
		t.Errorf("expected exactly one confirmation and one rejection, got %d/%d", confirmed, insufficient)
	}
	if got := f.stock.Quantity("shop", "p1"); got != 0 {
		t.Errorf("expected final stock 0, got %d", got)
	}
}

// singleOrder 取出仓储中唯一的订单。
func (f *checkoutFixture) singleOrder(t *testing.T) *domain.Order {
	t.Helper()
	orders := f.orders.All()
	if len(orders) != 1 {
		t.Fatalf("expected exactly one order, got %d", len(orders))
	}
	return orders[0]
}
