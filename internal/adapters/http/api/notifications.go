// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/grantwise/matchd/internal/domain/model"
)

// NotificationsHandler handles notification submissions.
type NotificationsHandler struct {
	deps Dependencies
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(deps Dependencies) *NotificationsHandler {
	return &NotificationsHandler{deps: deps}
}

// notificationRequest mirrors the schema for POST /v1/notifications.
type notificationRequest struct {
	ID                   string         `json:"id"`
	TargetUserID         string         `json:"target_user_id,omitempty"`
	TargetOrganizationID string         `json:"target_organization_id,omitempty"`
	Type                 string         `json:"type"`
	Title                string         `json:"title"`
	Message              string         `json:"message"`
	Data                 map[string]any `json:"data,omitempty"`
	Priority             string         `json:"priority"`
	Channels             []string       `json:"channels,omitempty"`
}

func (n notificationRequest) toModel() model.Notification {
	priority := model.Priority(n.Priority)
	if n.Priority == "" {
		priority = model.PriorityNormal
	}
	return model.Notification{
		ID:                   n.ID,
		TargetUserID:         n.TargetUserID,
		TargetOrganizationID: n.TargetOrganizationID,
		Type:                 n.Type,
		Title:                n.Title,
		Message:              n.Message,
		Data:                 n.Data,
		Priority:             priority,
		Channels:             n.Channels,
	}
}

// HandlePostNotification handles POST /v1/notifications requests. Duplicate
// submissions are acknowledged without re-delivery.
func (h *NotificationsHandler) HandlePostNotification(w http.ResponseWriter, r *http.Request) {
	var req notificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", ErrBadRequest)
		return
	}

	status, duplicate, err := h.deps.SubmitNotification(r.Context(), req.toModel())
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: string(status), Duplicate: duplicate})
}
