package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	servererrors "github.com/wagiedev/riskmcp/internal/errors"
)

// State is the lifecycle state of a session.
type State int32

const (
	// StateHandshaking is the initial state; only initialize, tools/list and
	// ping are served.
	StateHandshaking State = iota
	// StateReady allows tool calls.
	StateReady
	// StateClosed is terminal.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session is one client connection.
type Session struct {
	id        string
	log       *slog.Logger
	createdAt time.Time
	state     atomic.Int32

	infoMu          sync.RWMutex
	protocolVersion string
	clientInfo      *mcp.Implementation

	inbound  chan []byte
	outbound chan Event

	ctx       context.Context
	cancel    context.CancelFunc
	stopWatch func() bool

	closeOnce sync.Once
	done      chan struct{}
}

func newSession(id string, log *slog.Logger, queueSize, outboundBuffer int) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:        id,
		log:       log.With("session_id", id),
		createdAt: time.Now(),
		inbound:   make(chan []byte, queueSize),
		outbound:  make(chan Event, outboundBuffer),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Outbound returns the session's event stream. The channel is never closed;
// consumers stop when Done is closed.
func (s *Session) Outbound() <-chan Event { return s.outbound }

// Done returns a channel that is closed when the session closes.
func (s *Session) Done() <-chan struct{} { return s.done }

// Context returns the session context, cancelled on close.
func (s *Session) Context() context.Context { return s.ctx }

// Logger returns the session-scoped logger.
func (s *Session) Logger() *slog.Logger { return s.log }

// ProtocolVersion returns the negotiated protocol version, empty before initialize.
func (s *Session) ProtocolVersion() string {
	s.infoMu.RLock()
	defer s.infoMu.RUnlock()

	return s.protocolVersion
}

// ClientInfo returns the client implementation reported at initialize.
func (s *Session) ClientInfo() *mcp.Implementation {
	s.infoMu.RLock()
	defer s.infoMu.RUnlock()

	return s.clientInfo
}

// MarkReady completes the handshake.
// It fails with ErrAlreadyInitialized on a ready session and ErrSessionClosed
// on a closed one; the state is unchanged in both cases.
func (s *Session) MarkReady(protocolVersion string, client *mcp.Implementation) error {
	if !s.state.CompareAndSwap(int32(StateHandshaking), int32(StateReady)) {
		if s.State() == StateClosed {
			return servererrors.ErrSessionClosed
		}

		return servererrors.ErrAlreadyInitialized
	}

	s.infoMu.Lock()
	s.protocolVersion = protocolVersion
	s.clientInfo = client
	s.infoMu.Unlock()

	s.log.Debug("Session ready", "protocol_version", protocolVersion)

	return nil
}

// Emit queues an event on the outbound stream. It blocks while the stream
// buffer is full and fails with ErrSessionClosed once the session is closed.
func (s *Session) Emit(name string, data []byte) error {
	select {
	case <-s.done:
		return servererrors.ErrSessionClosed
	default:
	}

	select {
	case s.outbound <- NewEvent(name, data):
		return nil
	case <-s.done:
		return servererrors.ErrSessionClosed
	}
}

// enqueue hands a submitted message to the worker without blocking.
func (s *Session) enqueue(raw []byte) error {
	select {
	case <-s.done:
		return servererrors.ErrSessionClosed
	default:
	}

	select {
	case s.inbound <- raw:
		return nil
	default:
		return servererrors.ErrSessionBusy
	}
}

func (s *Session) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// close marks the session closed. Safe to call multiple times.
func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		s.cancel()

		if s.stopWatch != nil {
			s.stopWatch()
		}

		close(s.done)
		s.log.Debug("Session closed")
	})
}
