package zookeeper

import (
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	pkgerrors "github.com/pkg/errors"
)

const lockRoot = "/campus/locks"

// ErrLockWaitTimeout 表示在等待窗口内没有排到队首。
// 调用方应将其作为瞬时内部错误上报，由客户端重试。
var ErrLockWaitTimeout = pkgerrors.New("timeout waiting for lock")

// DistributedLock 基于临时顺序节点实现互斥锁。
// 同一 key 上的竞争者按节点序号排队，队首持锁；
// 持有者会话断开后节点自动删除，锁随之释放。
type DistributedLock struct {
	conn     *Conn
	path     string
	lockNode string
	maxWait  time.Duration
}

// NewDistributedLock 创建 key 对应的锁实例。
// key 中的 "/" 会被替换，保证只在 lockRoot 下展开一层。
func NewDistributedLock(conn *Conn, key string, maxWait time.Duration) (*DistributedLock, error) {
	if err := conn.EnsurePath("/campus"); err != nil {
		return nil, err
	}
	if err := conn.EnsurePath(lockRoot); err != nil {
		return nil, err
	}

	safeKey := strings.ReplaceAll(key, "/", "_")
	lockPath := lockRoot + "/" + safeKey
	if err := conn.EnsurePath(lockPath); err != nil {
		return nil, err
	}

	return &DistributedLock{conn: conn, path: lockPath, maxWait: maxWait}, nil
}

// Lock 阻塞获取锁，等待超过 maxWait 时返回 ErrLockWaitTimeout。
func (l *DistributedLock) Lock() error {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte{}, zk.WorldACL(zk.PermAll))
	if err != nil {
		return pkgerrors.Wrap(err, "create sequential lock node")
	}
	l.lockNode = nodePath

	deadline := time.Now().Add(l.maxWait)

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			l.abandon()
			return pkgerrors.Wrap(err, "list lock children")
		}
		sort.Strings(children)

		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 只监听排在自己前面的那个节点，避免惊群。
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			l.abandon()
			return pkgerrors.New("own lock node missing from children")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			l.abandon()
			return pkgerrors.Wrap(err, "watch previous lock node")
		}
		if !exists {
			continue
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			l.abandon()
			return ErrLockWaitTimeout
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(remaining):
			l.abandon()
			return ErrLockWaitTimeout
		}
	}
}

// Unlock 释放锁。节点已经不存在时视为成功，保证重复调用安全。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return nil
	}
	err := l.conn.Delete(l.lockNode, -1)
	if err != nil && err != zk.ErrNoNode {
		return pkgerrors.Wrap(err, "delete lock node")
	}
	l.lockNode = ""
	return nil
}

// abandon 在获锁失败时清理自己的排队节点，避免阻塞后来者。
func (l *DistributedLock) abandon() {
	if l.lockNode == "" {
		return
	}
	_ = l.conn.Delete(l.lockNode, -1)
	l.lockNode = ""
}
