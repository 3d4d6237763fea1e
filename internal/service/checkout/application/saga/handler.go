package saga

import (
	"context"
	"sync"

	"campus/internal/pkg/logger"
	"campus/internal/pkg/metrics"
	"campus/internal/service/checkout/domain"
	"campus/internal/service/checkout/domain/port"

	"go.opentelemetry.io/otel/trace"
)

// CheckoutContext 在结算 Saga 流程中传递上下文数据。
// 所有外部依赖都是抽象端口，每个步骤只通过它触达外界。
type CheckoutContext struct {
	Ctx    context.Context
	Order  *domain.Order
	Tracer trace.Tracer

	// Payment 在授权步骤成功后填充，供后续步骤与补偿引用。
	Payment *domain.Payment

	Orders    domain.OrderRepository
	Payments  domain.PaymentRepository
	Stock     domain.StockRepository
	Gateway   port.PaymentGateway
	Publisher port.EventPublisher

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
}

// AddCompensation 注册一个补偿动作。只在正向步骤成功后调用；
// 头插保证 TriggerCompensation 按完成顺序的逆序执行。
func (c *CheckoutContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation 逆序执行已注册的补偿。
// 每个补偿动作都是效果幂等的，中途崩溃后重跑是安全的。
func (c *CheckoutContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	logger.Ctx(ctx).Info().
		Str("order", c.Order.ID).
		Int("count", len(c.compensations)).
		Msg("Executing compensation functions")
	for _, comp := range c.compensations {
		comp(ctx)
		metrics.SagaCompensations.Inc()
	}
	c.compensations = nil
}

// Handler 是 Saga 步骤的责任链接口。
type Handler interface {
	SetNext(handler Handler) Handler
	Handle(checkoutCtx *CheckoutContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(checkoutCtx *CheckoutContext) error {
	if h.next != nil {
		return h.next.Handle(checkoutCtx)
	}
	return nil
}
