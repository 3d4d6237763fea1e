package adapter

import (
	"context"
	"sync"
	"time"

	"campus/internal/pkg/logger"
	"campus/internal/zookeeper"
)

// 等待上限同时作用于排队与 watch，超时统一上报为瞬时内部错误，
// 由客户端重试整个请求。
const slotLockMaxWait = 30 * time.Second

// ZkSlotLocker 是 domain.SlotLocker 的 ZooKeeper 实现。
// 每个 (tenant, resource) 对应一条锁路径，跨实例互斥。
type ZkSlotLocker struct {
	conn *zookeeper.Conn
}

func NewZkSlotLocker(conn *zookeeper.Conn) *ZkSlotLocker {
	return &ZkSlotLocker{conn: conn}
}

func (l *ZkSlotLocker) Acquire(ctx context.Context, tenant, resourceID string) (func(), error) {
	lock, err := zookeeper.NewDistributedLock(l.conn, "reservation-"+tenant+"-"+resourceID, slotLockMaxWait)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, err
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := lock.Unlock(); err != nil {
				logger.Ctx(ctx).Error().Err(err).
					Str("tenant", tenant).
					Str("resource", resourceID).
					Msg("Failed to release slot lock; ephemeral node will expire with the session")
			}
		})
	}
	return release, nil
}

// MemorySlotLocker 是 domain.SlotLocker 的进程内实现，
// 按 key 懒加载互斥锁，服务于单机部署与测试。
type MemorySlotLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewMemorySlotLocker() *MemorySlotLocker {
	return &MemorySlotLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *MemorySlotLocker) Acquire(ctx context.Context, tenant, resourceID string) (func(), error) {
	key := tenant + "/" + resourceID

	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()

	var once sync.Once
	return func() { once.Do(m.Unlock) }, nil
}
