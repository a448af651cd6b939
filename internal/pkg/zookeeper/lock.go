// Package zookeeper implements a fair distributed lock on ephemeral sequential znodes.
package zookeeper

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

const lockRoot = "/stockflow_locks"

// Connect opens a session and waits until it is established or timeout elapses.
func Connect(servers []string, timeout time.Duration) (*zk.Conn, error) {
	conn, events, err := zk.Connect(servers, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "zookeeper connect")
	}
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-events:
			if ev.State == zk.StateHasSession {
				return conn, nil
			}
		case <-deadline:
			conn.Close()
			return nil, errors.Errorf("zookeeper session not established within %s", timeout)
		}
	}
}

// DistributedLock is a single lock on one resource path.
type DistributedLock struct {
	conn     *zk.Conn
	path     string
	lockNode string
}

// NewDistributedLock makes sure the lock path exists.
func NewDistributedLock(conn *zk.Conn, resourceID string) (*DistributedLock, error) {
	lockPath := lockRoot + "/" + resourceID
	for _, p := range []string{lockRoot, lockPath} {
		exists, _, err := conn.Exists(p)
		if err != nil {
			return nil, errors.Wrapf(err, "check lock node %s", p)
		}
		if exists {
			continue
		}
		if _, err := conn.Create(p, nil, 0, zk.WorldACL(zk.PermAll)); err != nil && err != zk.ErrNodeExists {
			return nil, errors.Wrapf(err, "create lock node %s", p)
		}
	}
	return &DistributedLock{conn: conn, path: lockPath}, nil
}

// sequenceOf extracts the 10-digit suffix zookeeper appends to sequential nodes.
func sequenceOf(node string) string {
	if len(node) < 10 {
		return node
	}
	return node[len(node)-10:]
}

// Lock waits until this client owns the lowest sequence node, or ctx is done.
func (l *DistributedLock) Lock(ctx context.Context) error {
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", nil, zk.WorldACL(zk.PermAll))
	if err != nil {
		return errors.Wrap(err, "create sequential node")
	}
	l.lockNode = nodePath
	myNode := strings.TrimPrefix(nodePath, l.path+"/")

	for {
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			l.abandon()
			return errors.Wrap(err, "list lock children")
		}
		sort.Slice(children, func(i, j int) bool { return sequenceOf(children[i]) < sequenceOf(children[j]) })

		idx := -1
		for i, child := range children {
			if child == myNode {
				idx = i
				break
			}
		}
		switch {
		case idx == 0:
			return nil
		case idx < 0:
			l.abandon()
			return fmt.Errorf("lock node %s disappeared", nodePath)
		}

		exists, _, watch, err := l.conn.ExistsW(l.path + "/" + children[idx-1])
		if err != nil {
			l.abandon()
			return errors.Wrap(err, "watch previous node")
		}
		if !exists {
			continue
		}

		select {
		case <-watch:
		case <-ctx.Done():
			l.abandon()
			return ctx.Err()
		}
	}
}

func (l *DistributedLock) abandon() {
	_ = l.conn.Delete(l.lockNode, -1)
	l.lockNode = ""
}

func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("no lock to unlock")
	}
	if err := l.conn.Delete(l.lockNode, -1); err != nil && err != zk.ErrNoNode {
		return errors.Wrap(err, "delete lock node")
	}
	l.lockNode = ""
	return nil
}
