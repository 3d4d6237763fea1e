package application

import (
	"context"
	"time"

	"campus/internal/pkg/apperr"
	"campus/internal/pkg/logger"
	"campus/internal/pkg/metrics"
	"campus/internal/service/checkout/application/saga"
	"campus/internal/service/checkout/domain"
	"campus/internal/service/checkout/domain/port"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CheckoutApplicationService 驱动结算 Saga。
// 它是唯一的协调者: 顺序调用每个参与者，失败时在进程内触发补偿，
// 因此不需要外部 Saga 日志。
type CheckoutApplicationService struct {
	orders    domain.OrderRepository
	payments  domain.PaymentRepository
	stock     domain.StockRepository
	gateway   port.PaymentGateway
	publisher port.EventPublisher
	tracer    trace.Tracer
}

func NewCheckoutApplicationService(
	orders domain.OrderRepository,
	payments domain.PaymentRepository,
	stock domain.StockRepository,
	gateway port.PaymentGateway,
	publisher port.EventPublisher,
	tracer trace.Tracer,
) *CheckoutApplicationService {
	return &CheckoutApplicationService{
		orders:    orders,
		payments:  payments,
		stock:     stock,
		gateway:   gateway,
		publisher: publisher,
		tracer:    tracer,
	}
}

// Checkout 执行一次完整的结算。
// 成功意味着订单已 CONFIRMED；任何业务失败都在全部补偿完成后才上报。
// 每次调用创建一个新订单，没有幂等键去重。
func (s *CheckoutApplicationService) Checkout(ctx context.Context, cmd CheckoutCommand) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout")
	defer span.End()
	span.SetAttributes(
		attribute.String("tenant", cmd.Tenant),
		attribute.String("buyer.id", cmd.BuyerID),
		attribute.Int("items", len(cmd.Items)),
	)

	started := time.Now()
	defer func() { metrics.CheckoutDuration.Observe(time.Since(started).Seconds()) }()

	order, err := s.buildOrder(ctx, cmd)
	if err != nil {
		metrics.Checkouts.WithLabelValues("rejected").Inc()
		span.RecordError(err)
		return nil, err
	}

	checkoutCtx := &saga.CheckoutContext{
		Ctx:       ctx,
		Order:     order,
		Tracer:    s.tracer,
		Orders:    s.orders,
		Payments:  s.payments,
		Stock:     s.stock,
		Gateway:   s.gateway,
		Publisher: s.publisher,
	}

	chain := s.buildChain()
	if err := chain.Handle(checkoutCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Checkout chain failed")
		logger.Ctx(ctx).Warn().Err(err).Str("order", order.ID).
			Msg("Checkout failed, compensating completed steps")

		// 先逆序补偿所有已完成的正向步骤，再向调用方上报业务失败。
		checkoutCtx.TriggerCompensation(ctx)
		metrics.Checkouts.WithLabelValues(checkoutResult(err)).Inc()
		return nil, err
	}

	metrics.Checkouts.WithLabelValues("confirmed").Inc()
	logger.Ctx(ctx).Info().
		Str("order", order.ID).
		Int64("total_cents", order.TotalCents).
		Msg("Checkout confirmed")
	return toOrderView(order), nil
}

// buildOrder 校验请求并用库存行上的单价为行项目定价。
// 这里的库存读取是普通快照读，不加锁——真正的数量判定发生在
// 持锁的扣减步骤里。
func (s *CheckoutApplicationService) buildOrder(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	if err := domain.ValidateItems(cmd.Items); err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	lines, err := s.stock.FindByProductIDs(ctx, cmd.Tenant, productIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]int64, len(lines))
	for _, line := range lines {
		prices[line.ProductID] = line.UnitPriceCents
	}

	items := make([]domain.OrderItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			return nil, apperr.Newf(apperr.KindNotFound, "product %s not found", item.ProductID)
		}
		items = append(items, domain.OrderItem{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: price,
		})
	}

	return domain.NewOrder(cmd.Tenant, cmd.BuyerID, items)
}

func (s *CheckoutApplicationService) buildChain() saga.Handler {
	chain := new(saga.CreateOrderHandler)
	chain.
		SetNext(new(saga.AuthorizePaymentHandler)).
		SetNext(new(saga.DecrementStockHandler)).
		SetNext(new(saga.ConfirmOrderHandler)).
		SetNext(new(saga.PublishHandler))
	return chain
}

func checkoutResult(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInsufficientStock:
		return "insufficient_stock"
	case apperr.KindPaymentDeclined:
		return "payment_declined"
	default:
		return "failed"
	}
}
