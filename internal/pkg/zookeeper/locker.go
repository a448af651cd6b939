package zookeeper

import (
	"context"

	"github.com/go-zookeeper/zk"

	"stockflow/internal/pkg/logger"
)

// Locker hands out a DistributedLock per key.
type Locker struct {
	conn *zk.Conn
}

func NewLocker(conn *zk.Conn) *Locker {
	return &Locker{conn: conn}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	lock, err := NewDistributedLock(l.conn, key)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(ctx); err != nil {
		return nil, err
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to release zookeeper lock")
		}
	}, nil
}

func (l *Locker) Close() {
	l.conn.Close()
}
