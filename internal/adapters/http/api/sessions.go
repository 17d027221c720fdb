// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/grantwise/matchd/internal/adapters/auth"
	"github.com/grantwise/matchd/internal/adapters/registry"
	"github.com/grantwise/matchd/internal/domain/model"
)

// SessionsHandler handles session lifecycle requests.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// admitRequest mirrors the handshake schema for POST /v1/sessions.
type admitRequest struct {
	Token      string   `json:"token"`
	TenantID   string   `json:"tenant_id"`
	Topics     []string `json:"topics,omitempty"`
	WebhookURL string   `json:"webhook_url,omitempty"`
}

func (a admitRequest) validate() error {
	if strings.TrimSpace(a.Token) == "" {
		return errors.New("missing token")
	}
	return nil
}

// sessionResponse is the read shape for an admitted session.
type sessionResponse struct {
	SessionID      string   `json:"session_id"`
	UserID         string   `json:"user_id"`
	OrganizationID string   `json:"organization_id"`
	Topics         []string `json:"topics"`
	Channels       []string `json:"channels"`
}

func toSessionResponse(sess registry.Session) sessionResponse {
	channels := make([]string, 0, len(sess.Channels))
	for _, ch := range sess.Channels {
		channels = append(channels, ch.Name())
	}
	return sessionResponse{
		SessionID:      sess.ID,
		UserID:         sess.UserID,
		OrganizationID: sess.OrganizationID,
		Topics:         sess.Topics,
		Channels:       channels,
	}
}

// HandleAdmit handles POST /v1/sessions requests.
func (h *SessionsHandler) HandleAdmit(w http.ResponseWriter, r *http.Request) {
	var req admitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", ErrBadRequest)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation", err)
		return
	}

	sess, err := h.deps.AdmitSession(r.Context(), req.Token, req.TenantID, req.Topics, req.WebhookURL)
	if err != nil {
		if errors.Is(err, auth.ErrRejected) {
			writeError(w, http.StatusUnauthorized, "handshake_rejected", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", nil)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

// HandleHeartbeat handles POST /v1/sessions/{sessionID}/heartbeat requests.
func (h *SessionsHandler) HandleHeartbeat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.deps.Heartbeat(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDisconnect handles DELETE /v1/sessions/{sessionID} requests.
// Disconnecting an unknown session is a no-op.
func (h *SessionsHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	h.deps.Disconnect(r.Context(), chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}

// topicsRequest mirrors the schema for POST /v1/sessions/{sessionID}/topics.
type topicsRequest struct {
	Topics []string `json:"topics"`
}

// HandleSubscribe handles POST /v1/sessions/{sessionID}/topics requests and
// returns the joined topic set.
func (h *SessionsHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req topicsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", ErrBadRequest)
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "validation", errors.New("missing topics"))
		return
	}

	topics, err := h.deps.SubscribeTopics(r.Context(), chi.URLParam(r, "sessionID"), req.Topics)
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err)
		return
	}
	writeJSON(w, http.StatusOK, topicsRequest{Topics: topics})
}

// HandleUnsubscribe handles DELETE /v1/sessions/{sessionID}/topics/{topic}.
func (h *SessionsHandler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	topic := chi.URLParam(r, "topic")
	if err := h.deps.UnsubscribeTopic(r.Context(), id, topic); err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// envelopeReceiver is satisfied by the in-process stream channel. The SSE
// handler drains it without depending on the concrete channel type.
type envelopeReceiver interface {
	Receive() <-chan model.Envelope
}

// HandleStream handles GET /v1/sessions/{sessionID}/stream as a
// server-sent-events feed of the session's stream channel. The connection
// stays open until the client disconnects or the session is removed.
func (h *SessionsHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	sess, err := h.deps.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found", err)
		return
	}

	var stream envelopeReceiver
	for _, ch := range sess.Channels {
		if rc, ok := ch.(envelopeReceiver); ok {
			stream = rc
			break
		}
	}
	if stream == nil {
		writeError(w, http.StatusConflict, "no_stream", ErrNoStream)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "no_flush", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case env, open := <-stream.Receive():
			if !open {
				return
			}
			payload, err := json.Marshal(env)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Type, payload)
			flusher.Flush()
		}
	}
}
