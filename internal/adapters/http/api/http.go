// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/grantwise/matchd/internal/adapters/registry"
	"github.com/grantwise/matchd/internal/adapters/repository"
	"github.com/grantwise/matchd/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Session lifecycle.
	AdmitSession(ctx context.Context, token, tenantID string, topics []string, webhookURL string) (registry.Session, error)
	Heartbeat(ctx context.Context, sessionID string) error
	Disconnect(ctx context.Context, sessionID string)
	GetSession(ctx context.Context, sessionID string) (registry.Session, error)
	SubscribeTopics(ctx context.Context, sessionID string, topics []string) ([]string, error)
	UnsubscribeTopic(ctx context.Context, sessionID, topic string) error

	// SubmitNotification accepts one notification for fanout. The bool
	// reports a duplicate submission.
	SubmitNotification(ctx context.Context, n model.Notification) (model.DeliveryStatus, bool, error)

	// EnqueueMatch requests an async scoring run. Returns false on
	// backpressure.
	EnqueueMatch(ctx context.Context, profileID, reason string) bool

	// LatestRun exposes the most recent persisted scoring run.
	LatestRun(ctx context.Context, profileID string) (repository.Run, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	sessionsHandler      *SessionsHandler
	notificationsHandler *NotificationsHandler
	matchesHandler       *MatchesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		sessionsHandler:      NewSessionsHandler(deps),
		notificationsHandler: NewNotificationsHandler(deps),
		matchesHandler:       NewMatchesHandler(deps),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/metrics", s.healthHandler.HandleMetrics)
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/sessions", MetricsMiddleware(s.sessionsHandler.HandleAdmit, "sessions"))
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Delete("/", MetricsMiddleware(s.sessionsHandler.HandleDisconnect, "session_disconnect"))
			r.Post("/heartbeat", MetricsMiddleware(s.sessionsHandler.HandleHeartbeat, "session_heartbeat"))
			r.Post("/topics", MetricsMiddleware(s.sessionsHandler.HandleSubscribe, "session_topics"))
			r.Delete("/topics/{topic}", MetricsMiddleware(s.sessionsHandler.HandleUnsubscribe, "session_topics"))
			r.Get("/stream", s.sessionsHandler.HandleStream)
		})
		r.Post("/notifications", MetricsMiddleware(s.notificationsHandler.HandlePostNotification, "notifications"))
		r.Post("/matches/{profileID}", MetricsMiddleware(s.matchesHandler.HandleTriggerMatch, "matches"))
		r.Get("/matches/{profileID}", MetricsMiddleware(s.matchesHandler.HandleGetLatestRun, "matches"))
	})
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
