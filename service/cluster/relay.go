package cluster

import (
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"

	"VProject/logger"
)

const subjectPrefix = "im.group."

// Relay extends group sends across gateway nodes over NATS. Each node
// publishes every group send on im.group.<key> and subscribes to the groups
// its local connections joined; an origin header keeps a node from
// re-delivering its own publishes. A nil *Relay is a valid no-op for
// single-node runs.
type Relay struct {
	nc      *nats.Conn
	node    string
	deliver func(group string, payload []byte)

	mu   sync.Mutex
	subs map[string]*nats.Subscription // group -> subscription
}

// Config for the relay connection.
type Config struct {
	Servers       []string
	Node          string // origin id, must be unique per gateway node
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// Connect dials NATS. deliver is invoked for payloads published by other
// nodes to groups this node is subscribed to.
func Connect(cfg Config, deliver func(group string, payload []byte)) (*Relay, error) {
	if len(cfg.Servers) == 0 {
		return nil, errors.New("nats servers missing")
	}
	if cfg.Node == "" {
		return nil, errors.New("node id missing")
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 500 * time.Millisecond
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 3 * time.Second
	}
	opts := []nats.Option{
		nats.Name("voxta-gateway-" + cfg.Node),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.ReconnectJitter(100*time.Millisecond, 500*time.Millisecond),
		nats.Timeout(cfg.Timeout),
	}
	nc, err := nats.Connect(strings.Join(cfg.Servers, ","), opts...)
	if err != nil {
		return nil, errors.Wrap(err, "nats connect")
	}
	return &Relay{
		nc:      nc,
		node:    cfg.Node,
		deliver: deliver,
		subs:    make(map[string]*nats.Subscription),
	}, nil
}

// Publish fans a group payload out to the other nodes.
func (r *Relay) Publish(group string, payload []byte) error {
	if r == nil {
		return nil
	}
	msg := nats.NewMsg(subjectPrefix + group)
	msg.Header.Set("origin", r.node)
	msg.Data = payload
	return r.nc.PublishMsg(msg)
}

// Subscribe starts receiving remote sends for a group. Idempotent; called
// on the first local join of the group.
func (r *Relay) Subscribe(group string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[group]; ok {
		return nil
	}
	sub, err := r.nc.Subscribe(subjectPrefix+group, func(m *nats.Msg) {
		if m.Header.Get("origin") == r.node {
			return // our own publish, already delivered locally
		}
		r.deliver(group, m.Data)
	})
	if err != nil {
		return errors.Wrapf(err, "subscribe group %s", group)
	}
	r.subs[group] = sub
	return nil
}

// Unsubscribe stops remote delivery for a group; called when the last local
// member leaves. Safe when never subscribed.
func (r *Relay) Unsubscribe(group string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[group]
	if !ok {
		return
	}
	delete(r.subs, group)
	if err := sub.Drain(); err != nil {
		logger.Warnf("[relay] drain group %s: %v", group, err)
	}
}

// Close drains every subscription and the connection.
func (r *Relay) Close() {
	if r == nil {
		return
	}
	r.mu.Lock()
	for group, sub := range r.subs {
		_ = sub.Drain()
		delete(r.subs, group)
	}
	r.mu.Unlock()
	if r.nc != nil {
		_ = r.nc.Drain()
	}
}
