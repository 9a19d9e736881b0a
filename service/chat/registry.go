package chat

import (
	"fmt"
	"sync"
)

// GroupKey is the multicast key for one user's connections.
func GroupKey(userID int64) string { return fmt.Sprintf("user_%d", userID) }

// Registry is the process-wide presence table: group key -> live
// connections. It is the one structure shared by every connection
// goroutine; membership mutation is serialized under the lock, sends
// operate on a snapshot taken under RLock.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]map[string]*Client // group -> conn_id -> client
	byConn map[string]*Client            // conn_id -> client
	fanout *Fanout
}

func NewRegistry(fanout *Fanout) *Registry {
	return &Registry{
		groups: make(map[string]map[string]*Client),
		byConn: make(map[string]*Client),
		fanout: fanout,
	}
}

// Join adds the connection to the group. Idempotent. Reports true when the
// group gained its first local member (callers hook relay subscription and
// the presence mirror there).
func (r *Registry) Join(group string, c *Client) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.groups[group]
	if m == nil {
		m = make(map[string]*Client)
		r.groups[group] = m
		first = true
	}
	m[c.ConnID] = c
	r.byConn[c.ConnID] = c
	return first
}

// Leave removes the connection from the group. Idempotent, no-op when the
// connection or group is absent. Reports true when the group lost its last
// local member.
func (r *Registry) Leave(group string, c *Client) (last bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m := r.groups[group]; m != nil {
		delete(m, c.ConnID)
		if len(m) == 0 {
			delete(r.groups, group)
			last = true
		}
	}
	delete(r.byConn, c.ConnID)
	return last
}

// SendToGroup delivers the payload to every member registered at call
// time. An absent or empty group is a no-op, never an error: offline
// recipients read history from the message store instead.
func (r *Registry) SendToGroup(group string, payload []byte) {
	conns := r.snapshot(group)
	if len(conns) == 0 {
		return
	}
	r.fanout.Broadcast(group, conns, payload)
}

func (r *Registry) snapshot(group string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.groups[group]
	if len(m) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(m))
	for _, c := range m {
		if !c.Closed() {
			out = append(out, c)
		}
	}
	return out
}

// Members reports the group's current size.
func (r *Registry) Members(group string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.groups[group])
}
