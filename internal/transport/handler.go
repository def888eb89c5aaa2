package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wagiedev/riskmcp/internal/config"
	servererrors "github.com/wagiedev/riskmcp/internal/errors"
	"github.com/wagiedev/riskmcp/internal/session"
)

// HealthPath is the route of the liveness endpoint.
const HealthPath = "/health"

// sessionIDParams are the query parameters accepted for the session id,
// in lookup order.
var sessionIDParams = []string{"sessionId", "session_id", "session"}

// ToolCounter reports the number of advertised tools.
type ToolCounter interface {
	Len() int
}

// Handler is the HTTP surface of the tool server.
type Handler struct {
	log    *slog.Logger
	table  *session.Table
	tools  ToolCounter
	opts   config.Options
	router *chi.Mux
}

// Compile-time verification that Handler implements http.Handler.
var _ http.Handler = (*Handler)(nil)

// NewHandler creates the router for the given session table.
// A nil opts uses config.DefaultOptions.
func NewHandler(log *slog.Logger, table *session.Table, tools ToolCounter, opts *config.Options) *Handler {
	if opts == nil {
		opts = config.DefaultOptions()
	}

	o := *opts
	o.Normalize()

	h := &Handler{
		log:    log.With("component", "transport"),
		table:  table,
		tools:  tools,
		opts:   o,
		router: chi.NewRouter(),
	}

	h.router.Use(middleware.RequestID)
	h.router.Use(middleware.RealIP)
	h.router.Use(h.accessLog)
	h.router.Use(middleware.Recoverer)

	h.router.Get(HealthPath, h.handleHealth)
	h.router.Get(o.SSEPath, h.handleSSE)
	h.router.Post(o.MessagesPath, h.handleMessage)

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleSSE opens a session and streams its events until the session or the
// request ends.
func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	s, err := h.table.Open(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, servererrors.ErrServerShutdown) {
			status = http.StatusServiceUnavailable
		}

		writeError(w, status, servererrors.Kind(err), err.Error())

		return
	}
	defer h.table.Close(s.ID())

	log := h.log.With("session_id", s.ID(), "request_id", middleware.GetReqID(r.Context()))
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		log.Error("Response does not support streaming", "error", err)

		return
	}

	var ping <-chan time.Time

	if h.opts.KeepAlive > 0 {
		ticker := time.NewTicker(h.opts.KeepAlive)
		defer ticker.Stop()

		ping = ticker.C
	}

	log.Debug("Event stream opened")

	for {
		select {
		case <-s.Done():
			log.Debug("Event stream closed by session")

			return

		case <-r.Context().Done():
			log.Debug("Client disconnected")

			return

		case ev := <-s.Outbound():
			// Nothing is written once the session is done.
			select {
			case <-s.Done():
				return
			default:
			}

			if err := writeFrame(w, rc, ev.Format()); err != nil {
				log.Warn("Failed to write event", "event", ev.Name, "error", err)

				return
			}

		case <-ping:
			if err := writeFrame(w, rc, ": ping\n\n"); err != nil {
				log.Debug("Failed to write keep-alive", "error", err)

				return
			}
		}
	}
}

func writeFrame(w io.Writer, rc *http.ResponseController, frame string) error {
	if _, err := io.WriteString(w, frame); err != nil {
		return err
	}

	return rc.Flush()
}

// handleMessage accepts one JSON-RPC message for a session.
func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := sessionIDFromRequest(r)
	if id == "" {
		writeError(w, http.StatusBadRequest, servererrors.KindProtocolError, "missing session id")

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.opts.MaxMessageBytes))
	if err != nil {
		if _, ok := errors.AsType[*http.MaxBytesError](err); ok {
			writeError(w, http.StatusRequestEntityTooLarge, servererrors.KindProtocolError, "message too large")

			return
		}

		writeError(w, http.StatusBadRequest, servererrors.KindProtocolError, "failed to read message body")

		return
	}

	if err := h.table.Submit(id, body); err != nil {
		status := http.StatusInternalServerError

		switch {
		case errors.Is(err, servererrors.ErrUnknownSession), errors.Is(err, servererrors.ErrSessionClosed):
			status = http.StatusNotFound
		case errors.Is(err, servererrors.ErrSessionBusy):
			status = http.StatusServiceUnavailable
			w.Header().Set("Retry-After", "1")
		}

		writeError(w, status, servererrors.Kind(err), err.Error())

		return
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = io.WriteString(w, "Accepted")
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	tools := 0
	if h.tools != nil {
		tools = h.tools.Len()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.table.Len(),
		"tools":    tools,
	})
}

func sessionIDFromRequest(r *http.Request) string {
	q := r.URL.Query()
	for _, name := range sessionIDParams {
		if id := q.Get(name); id != "" {
			return id
		}
	}

	return ""
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{
		"error":   kind,
		"message": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
