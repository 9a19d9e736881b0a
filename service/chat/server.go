package chat

import (
	"VProject/logger"
	"VProject/service/cluster"
	"VProject/service/storage"
)

// Deps carries the collaborators the gateway consumes. Presence and relay
// may be nil (single-node run without Redis/NATS).
type Deps struct {
	Users     storage.UserDirectory
	Interests storage.InterestStore
	Messages  storage.MessageStore
	Presence  *storage.Presence

	NodeID        string
	SendQueueSize int
	FanoutWorkers int
}

// Server owns the presence registry and wires sessions to the stores. One
// Server per process; sessions hold a reference, never package globals.
type Server struct {
	deps     Deps
	registry *Registry
	fanout   *Fanout
	relay    *cluster.Relay
}

func NewServer(deps Deps) *Server {
	if deps.SendQueueSize <= 0 {
		deps.SendQueueSize = 256
	}
	if deps.FanoutWorkers <= 0 {
		deps.FanoutWorkers = 8
	}
	f := NewFanout(deps.FanoutWorkers, 1024)
	return &Server{
		deps:     deps,
		registry: NewRegistry(f),
		fanout:   f,
	}
}

// SetRelay attaches the cross-node relay; call before serving traffic.
func (s *Server) SetRelay(r *cluster.Relay) { s.relay = r }

// Registry exposes the presence table (tests, diagnostics).
func (s *Server) Registry() *Registry { return s.registry }

// SendToGroup fans out locally and, when clustered, to the other nodes.
func (s *Server) SendToGroup(group string, payload []byte) {
	s.registry.SendToGroup(group, payload)
	if err := s.relay.Publish(group, payload); err != nil {
		// Local delivery already happened; remote members catch up via
		// history on their next fetch.
		logger.Errorf("[server] relay publish group=%s err=%v", group, err)
	}
}

// DeliverLocal is the relay callback: payload published by another node
// for a group with members on this node.
func (s *Server) DeliverLocal(group string, payload []byte) {
	s.registry.SendToGroup(group, payload)
}
