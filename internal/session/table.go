package session

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wagiedev/riskmcp/internal/config"
	servererrors "github.com/wagiedev/riskmcp/internal/errors"
)

// Handler processes one submitted message for a session.
//
// Handle is called from the session's worker goroutine, one message at a
// time, in submission order. Results are reported with Session.Emit.
type Handler interface {
	Handle(ctx context.Context, s *Session, raw []byte)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, s *Session, raw []byte)

// Handle implements Handler.
func (f HandlerFunc) Handle(ctx context.Context, s *Session, raw []byte) {
	f(ctx, s, raw)
}

// Table is the registry of open sessions.
type Table struct {
	log     *slog.Logger
	handler Handler
	opts    config.Options

	mu       sync.RWMutex
	sessions map[string]*Session
	shutdown bool

	wg sync.WaitGroup
}

// NewTable creates a session table dispatching messages to handler.
// A nil opts uses config.DefaultOptions.
func NewTable(log *slog.Logger, handler Handler, opts *config.Options) *Table {
	if opts == nil {
		opts = config.DefaultOptions()
	}

	o := *opts
	o.Normalize()

	return &Table{
		log:      log.With("component", "sessions"),
		handler:  handler,
		opts:     o,
		sessions: make(map[string]*Session, 16),
	}
}

// Open creates a session in the handshaking state and starts its worker.
//
// The first event on the returned session's stream is the endpoint event
// carrying the submission URL. The session closes when ctx is done.
func (t *Table) Open(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	s := newSession(id, t.log, t.opts.QueueSize, t.opts.OutboundBuffer)
	s.stopWatch = context.AfterFunc(ctx, func() { t.Close(id) })

	t.mu.Lock()
	if t.shutdown {
		t.mu.Unlock()
		s.close()

		return nil, servererrors.ErrServerShutdown
	}

	t.sessions[id] = s

	// The buffer is empty, so this cannot block.
	_ = s.Emit(EventEndpoint, []byte(t.EndpointURL(id)))

	t.wg.Go(func() { t.run(s) })
	t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		t.Close(id)

		return nil, err
	}

	t.log.Info("Session opened", "session_id", id)

	return s, nil
}

// EndpointURL returns the submission URL announced to a session.
func (t *Table) EndpointURL(id string) string {
	return t.opts.MessagesPath + "?sessionId=" + url.QueryEscape(id)
}

// Submit enqueues a raw message for a session and returns immediately.
//
// It fails with ErrUnknownSession when no open session has the id and with
// ErrSessionBusy when the session's inbound queue is full. Results are
// delivered on the session's outbound stream, never returned here.
func (t *Table) Submit(id string, raw []byte) error {
	s, ok := t.Get(id)
	if !ok {
		return servererrors.ErrUnknownSession
	}

	if err := s.enqueue(raw); err != nil {
		t.log.Debug("Submission refused", "session_id", id, "error", err)

		return err
	}

	return nil
}

// Get returns the open session with the given id.
func (t *Table) Get(id string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok := t.sessions[id]

	return s, ok
}

// Len returns the number of open sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.sessions)
}

// Close removes and closes a session. Closing an unknown or already closed
// session is a no-op.
func (t *Table) Close(id string) {
	t.mu.Lock()
	s, ok := t.sessions[id]
	delete(t.sessions, id)
	t.mu.Unlock()

	if !ok {
		return
	}

	s.close()
	t.log.Info("Session removed", "session_id", id, "age", time.Since(s.createdAt).Round(time.Millisecond))
}

// Shutdown closes every session, refuses new ones, and waits for all
// workers to return or ctx to end.
func (t *Table) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	t.shutdown = true

	ids := make([]string, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	t.mu.Unlock()

	for _, id := range ids {
		t.Close(id)
	}

	waited := make(chan struct{})

	go func() {
		t.wg.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.log.Info("Session table shut down", "closed", len(ids))

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the session worker. It dispatches inbound messages one at a time
// and closes the session on handshake timeout.
func (t *Table) run(s *Session) {
	defer t.Close(s.id)

	var timeout <-chan time.Time

	if t.opts.HandshakeTimeout > 0 {
		timer := time.NewTimer(t.opts.HandshakeTimeout)
		defer timer.Stop()

		timeout = timer.C
	}

	for {
		select {
		case <-s.done:
			return

		case <-timeout:
			if s.State() == StateHandshaking {
				s.log.Warn("Handshake timed out", "timeout", t.opts.HandshakeTimeout)

				return
			}

			timeout = nil

		case raw := <-s.inbound:
			if s.isClosed() {
				return
			}

			t.handler.Handle(s.ctx, s, raw)
		}
	}
}
