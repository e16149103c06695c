package chat

import (
	"sync"
)

// ConnManager tracks every live connection, bound or not. The Registry
// only knows identities; this is the transport-level index used for
// broadcast fanout and teardown.
type ConnManager struct {
	mu     sync.RWMutex
	byConn map[string]*Client
}

func NewConnManager() *ConnManager {
	return &ConnManager{byConn: make(map[string]*Client)}
}

func (m *ConnManager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byConn[c.ConnID] = c
}

// Remove drops the connection and returns it, or nil if unknown.
func (m *ConnManager) Remove(connID string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.byConn[connID]
	delete(m.byConn, connID)
	return c
}

func (m *ConnManager) Get(connID string) (*Client, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byConn[connID]
	return c, ok
}

func (m *ConnManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}

// ListAll snapshots the live connections.
func (m *ConnManager) ListAll() []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Client, 0, len(m.byConn))
	for _, c := range m.byConn {
		out = append(out, c)
	}
	return out
}
