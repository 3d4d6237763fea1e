package push

import (
	"context"
	"encoding/json"
	"sync"

	"campus/internal/pkg/logger"
	"campus/internal/service/checkout/domain"

	pkgerrors "github.com/pkg/errors"
)

// Hub 把结算完成事件广播给所有已订阅的运维连接。
// 它实现 checkout 的 EventPublisher 端口，作为 Kafka 之外的第二个下游。
type Hub struct {
	mu   sync.RWMutex
	subs map[chan []byte]bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan []byte]bool)}
}

// Subscribe 注册一个订阅者，返回事件通道与注销函数。
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 16)

	h.mu.Lock()
	h.subs[ch] = true
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			// 在写锁内关闭，保证没有发布者正在向该通道发送。
			h.mu.Lock()
			delete(h.subs, ch)
			close(ch)
			h.mu.Unlock()
		})
	}
	return ch, cancel
}

// PublishCheckoutConfirmed 把事件推给每个订阅者。
// 写满的慢订阅者直接丢弃本条消息，推送流是尽力而为的观测通道，
// 不允许反压传导回结算路径。
func (h *Hub) PublishCheckoutConfirmed(ctx context.Context, event *domain.CheckoutConfirmed) error {
	data, err := json.Marshal(event)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal event for push stream")
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			logger.Ctx(ctx).Warn().Str("order", event.OrderID).
				Msg("Push subscriber too slow, dropping event")
		}
	}
	return nil
}
