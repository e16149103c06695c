package chat

import (
	"LoginChat/tools/security"
)

// Options wires a Server. Zero values get demo-sized defaults; a nil
// Registry selects the in-memory implementation.
type Options struct {
	NodeID             string
	Store              MessageStore
	Registry           Registry
	Mirror             PresenceMirror
	JWT                security.Options
	AllowAnonymousJoin bool
	SendQueueSize      int
	FanoutWorkers      int
	FanoutQueue        int
}

// Server owns the realtime core: the registry, the live-connection
// index, the fanout pool and the frame handlers.
type Server struct {
	nodeID    string
	reg       Registry
	connMgr   *ConnManager
	fanout    *Fanout
	tracker   *Tracker
	gate      *Gate
	router    *Router
	disp      *Dispatcher
	sendQueue int
}

func NewServer(opts Options) *Server {
	if opts.NodeID == "" {
		opts.NodeID = "gateway_1"
	}
	if opts.Registry == nil {
		opts.Registry = NewMemoryRegistry()
	}
	if opts.SendQueueSize <= 0 {
		opts.SendQueueSize = 256
	}
	if opts.FanoutWorkers <= 0 {
		opts.FanoutWorkers = 4
	}
	if opts.FanoutQueue <= 0 {
		opts.FanoutQueue = 1024
	}

	s := &Server{
		nodeID:    opts.NodeID,
		reg:       opts.Registry,
		connMgr:   NewConnManager(),
		fanout:    NewFanout(opts.FanoutWorkers, opts.FanoutQueue),
		sendQueue: opts.SendQueueSize,
	}
	s.tracker = NewTracker(s.reg, s.connMgr, s.fanout, opts.Mirror, opts.NodeID)
	s.gate = NewGate(s.reg, s.tracker, opts.JWT, opts.AllowAnonymousJoin)
	s.router = NewRouter(s.reg, s.connMgr, s.fanout, opts.Store)

	s.disp = NewDispatcher()
	s.disp.Register(s.gate)
	s.disp.Register(s.router)
	return s
}

func (s *Server) Registry() Registry    { return s.reg }
func (s *Server) ConnMgr() *ConnManager { return s.connMgr }
func (s *Server) Tracker() *Tracker     { return s.tracker }
func (s *Server) Disp() *Dispatcher     { return s.disp }

// Close stops the fanout workers. Live connections wind down through
// their own read loops.
func (s *Server) Close() {
	s.fanout.Close()
}
