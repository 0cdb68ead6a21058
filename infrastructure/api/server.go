// Package api exposes the workspace over HTTP: REST routes for commands and queries
// and a server-sent events stream fed by the hub.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"teamspace/auth"
	"teamspace/mediator"
	"teamspace/runtime"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	RateLimitPerMinute int
	Heartbeat          time.Duration
	ConnectionBuffer   int
	TracingService     string
}

type Server struct {
	log      *slog.Logger
	cfg      Config
	mediator *mediator.Mediator
	hub      *runtime.Hub
	presence *runtime.Presence
	tokens   *auth.Tokens
	newID    func() string
}

func NewServer(log *slog.Logger, cfg Config, m *mediator.Mediator, hub *runtime.Hub,
	presence *runtime.Presence, tokens *auth.Tokens) *Server {
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 15 * time.Second
	}
	if cfg.ConnectionBuffer <= 0 {
		cfg.ConnectionBuffer = 64
	}
	return &Server{
		log:      log,
		cfg:      cfg,
		mediator: m,
		hub:      hub,
		presence: presence,
		tokens:   tokens,
		newID:    uuid.NewString,
	}
}

// Routes builds the router. Everything under /api requires a bearer token.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(Metrics())
	if s.cfg.TracingService != "" {
		r.Use(Tracing(s.cfg.TracingService))
	}
	r.Use(RequestLogger(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RateLimitPerMinute > 0 {
			r.Use(RateLimit(s.cfg.RateLimitPerMinute, time.Minute))
		}
		r.Use(auth.Authenticate(s.tokens, s.log))

		r.Get("/events", s.streamEvents)
		r.Get("/presence", s.listPresence)
		r.Put("/connections/{connectionID}/groups/{group}", s.joinGroup)
		r.Delete("/connections/{connectionID}/groups/{group}", s.leaveGroup)

		r.Get("/boards", s.listBoards)
		r.Post("/boards", s.createBoard)
		r.Get("/boards/{boardID}/tasks", s.getBoardTasks)
		r.Post("/boards/{boardID}/tasks", s.createTask)
		r.Put("/boards/{boardID}/tasks/{taskID}/status", s.moveTask)
		r.Put("/boards/{boardID}/tasks/{taskID}/assignee", s.assignTask)
		r.Delete("/boards/{boardID}/tasks/{taskID}", s.deleteTask)

		r.Get("/rooms/{room}/messages", s.getChatHistory)
		r.Post("/rooms/{room}/messages", s.postChatMessage)
		r.Get("/search", s.searchMessages)

		r.Get("/assistant/{conversationID}", s.getConversation)
		r.Post("/assistant/{conversationID}", s.askAssistant)
		r.Delete("/assistant/{conversationID}", s.resetConversation)
	})
	return r
}
