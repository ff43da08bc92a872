package server

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ErrListenerTaken reports a second Run on the same bound server.
var ErrListenerTaken = errors.New("server: listeners already taken")

// Option adjusts how Bind sets the transports up.
type Option func(*bindConfig)

type bindConfig struct {
	udp           bool
	introspection bool
	serverIdent   string
	logger        zerolog.Logger
}

// WithUDP additionally binds a UDP socket on the same address. Each
// datagram carries one framed request and is answered at most once.
func WithUDP() Option {
	return func(c *bindConfig) { c.udp = true }
}

// WithIntrospection registers system.listMethods over the bound
// snapshot.
func WithIntrospection() Option {
	return func(c *bindConfig) { c.introspection = true }
}

// WithServerIdent stamps ident as the Server header on every response
// instead of the framing default.
func WithServerIdent(ident string) Option {
	return func(c *bindConfig) { c.serverIdent = ident }
}

// WithLogger routes connection and dispatch events through logger
// instead of the global one.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *bindConfig) { c.logger = logger }
}

// BoundServer owns the sockets between Bind and Run. Its dispatch
// snapshot is fixed at bind time; later registrations on the Server are
// not seen.
type BoundServer struct {
	dispatch *dispatcher
	addr     net.Addr
	udpAddr  net.Addr

	mu  sync.Mutex
	tcp net.Listener
	udp net.PacketConn
}

// Bind snapshots the registry and binds a TCP listener on addr, plus a
// UDP socket on the same resolved address when WithUDP is given.
func (s *Server) Bind(addr string, opts ...Option) (*BoundServer, error) {
	cfg := bindConfig{logger: log.Logger}
	for _, opt := range opts {
		opt(&cfg)
	}

	handlers := make(map[string]HandlerFunc, len(s.handlers)+1)
	for name, h := range s.handlers {
		handlers[name] = h
	}
	d := &dispatcher{
		handlers:    handlers,
		onMissing:   s.onMissing,
		serverIdent: cfg.serverIdent,
		log:         cfg.logger,
	}
	if cfg.introspection {
		handlers["system.listMethods"] = listMethodsHandler(d)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("server: bind failed (%s): %w", addr, err)
	}
	b := &BoundServer{
		dispatch: d,
		addr:     ln.Addr(),
		tcp:      ln,
	}
	if cfg.udp {
		pc, err := net.ListenPacket("udp", ln.Addr().String())
		if err != nil {
			ln.Close()
			return nil, fmt.Errorf("server: bind failed (%s): %w", addr, err)
		}
		b.udp = pc
		b.udpAddr = pc.LocalAddr()
	}
	return b, nil
}

// LocalAddr reports the TCP listen address. It stays valid after Run
// takes the listeners.
func (b *BoundServer) LocalAddr() net.Addr {
	return b.addr
}

// UDPAddr reports the UDP listen address, or nil when UDP is not bound.
func (b *BoundServer) UDPAddr() net.Addr {
	return b.udpAddr
}

// Run serves until a listener fails. The sockets are taken exactly once;
// every later Run returns ErrListenerTaken.
func (b *BoundServer) Run() error {
	b.mu.Lock()
	tcp, udp := b.tcp, b.udp
	b.tcp, b.udp = nil, nil
	b.mu.Unlock()
	if tcp == nil {
		return ErrListenerTaken
	}

	if udp == nil {
		return b.acceptLoop(tcp)
	}
	var g errgroup.Group
	g.Go(func() error { return b.acceptLoop(tcp) })
	g.Go(func() error { return b.receiveLoop(udp) })
	return g.Wait()
}
