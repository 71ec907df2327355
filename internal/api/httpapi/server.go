package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/vextm/tm-bridge/internal/domain/field"
	"github.com/vextm/tm-bridge/internal/logger"
	"github.com/vextm/tm-bridge/internal/service/bridge"
	"github.com/vextm/tm-bridge/internal/service/roster"
)

// defaultKeepaliveInterval is the cadence of SSE keepalive comments.
const defaultKeepaliveInterval = 15 * time.Second

// Server exposes the bridge engine and the roster scraper over HTTP. One
// instance serves every field set; routing is by the field set's window
// title.
type Server struct {
	engine      *bridge.Engine
	roster      *roster.Client
	competition field.Competition
	keepalive   time.Duration
}

// Option customizes a Server.
type Option func(*Server)

// WithKeepaliveInterval overrides the SSE keepalive cadence.
func WithKeepaliveInterval(interval time.Duration) Option {
	return func(s *Server) {
		if interval > 0 {
			s.keepalive = interval
		}
	}
}

// NewServer creates the HTTP surface over the given engine and roster
// client. The roster client may be nil; its endpoints then report the
// feature as unavailable.
func NewServer(
	engine *bridge.Engine,
	rosterClient *roster.Client,
	competition field.Competition,
	opts ...Option,
) *Server {
	s := &Server{
		engine:      engine,
		roster:      rosterClient,
		competition: competition,
		keepalive:   defaultKeepaliveInterval,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/fieldsets", s.handleListFieldsets)
	mux.HandleFunc("GET /api/fieldsets/{title}", s.handleOverview)
	mux.HandleFunc("DELETE /api/fieldsets/{title}", s.handleRemoveFieldset)
	mux.HandleFunc("POST /api/fieldsets/{title}/commands/{kind}", s.handleCommand)
	mux.HandleFunc("GET /api/fieldsets/{title}/events", s.handleEvents)

	mux.HandleFunc("GET /api/teams/{division}", s.handleTeams)
	mux.HandleFunc("GET /api/matches/{division}", s.handleMatches)
	mux.HandleFunc("GET /api/rankings/{division}", s.handleRankings)
	mux.HandleFunc("GET /api/skills", s.handleSkills)

	return mux
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListFieldsets returns the identities of every registered field set.
func (s *Server) handleListFieldsets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"fieldsets": s.engine.ListFields()})
}

// handleOverview returns the field set's retained snapshot, registering the
// field set on first reference.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.GetOverview(r.Context(), r.PathValue("title"))
	if err != nil {
		writeEngineError(w, err)

		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// handleRemoveFieldset tears the field set down.
func (s *Server) handleRemoveFieldset(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.RemoveField(r.PathValue("title")); err != nil {
		writeEngineError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// commandResponse is the body of a command endpoint reply.
type commandResponse struct {
	// Confirmed reports whether the expected post-condition was observed.
	Confirmed bool `json:"confirmed"`
	// Snapshot is the last state seen during confirmation.
	Snapshot field.Snapshot `json:"snapshot"`
}

// handleCommand issues one command against a field set. A confirmed command
// replies 200, an issued-but-unconfirmed one 202.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	kind, err := field.ParseCommandKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	var params field.CommandParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	res, err := s.engine.Execute(r.Context(), r.PathValue("title"), kind, params)
	if err != nil {
		writeEngineError(w, err)

		return
	}

	status := http.StatusAccepted
	if res.Confirmed {
		status = http.StatusOK
	}

	writeJSON(w, status, commandResponse{Confirmed: res.Confirmed, Snapshot: res.Snapshot})
}

// handleEvents streams the field set's change events as server-sent events.
// The first frame is always the baseline; afterwards one frame per observed
// transition, with keepalive comments while the stream is idle.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))

		return
	}

	sub, err := s.engine.Subscribe(r.Context(), r.PathValue("title"))
	if err != nil {
		writeEngineError(w, err)

		return
	}

	defer s.engine.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(s.keepalive)
	defer ticker.Stop()

	ctx := r.Context()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}

			payload, err := json.Marshal(ev)
			if err != nil {
				logger.ErrorKV(ctx, "Failed to serialize change event", "error", err)

				continue
			}

			if _, err := w.Write(append(append([]byte("data: "), payload...), '\n', '\n')); err != nil {
				return
			}

			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}

			flusher.Flush()
		}
	}
}
