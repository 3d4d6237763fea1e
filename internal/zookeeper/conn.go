package zookeeper

import (
	"time"

	"github.com/go-zookeeper/zk"
	pkgerrors "github.com/pkg/errors"
)

// Conn 是对 zk.Conn 的薄封装，统一连接参数并便于注入。
type Conn struct {
	*zk.Conn
}

// Connect 建立 ZooKeeper 会话。会话超时决定了持锁进程崩溃后
// 临时节点（即锁）被自动清理的时间上限。
func Connect(servers []string) (*Conn, error) {
	conn, _, err := zk.Connect(servers, 10*time.Second)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "connect zookeeper")
	}
	return &Conn{Conn: conn}, nil
}

// EnsurePath 逐级创建持久节点，已存在时静默返回。
func (c *Conn) EnsurePath(path string) error {
	exists, _, err := c.Exists(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "check path %s", path)
	}
	if exists {
		return nil
	}
	_, err = c.Create(path, []byte{}, 0, zk.WorldACL(zk.PermAll))
	if err != nil && err != zk.ErrNodeExists {
		return pkgerrors.Wrapf(err, "create path %s", path)
	}
	return nil
}
