package model

import "time"

// Priority controls how aggressively a notification is fanned out.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Elevated reports whether delivery should be attempted on every channel a
// session exposes rather than only its primary ones.
func (p Priority) Elevated() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DeliveryStatus is the aggregate outcome of one fanout.
type DeliveryStatus string

const (
	StatusPending DeliveryStatus = "pending"
	StatusSent    DeliveryStatus = "sent"
	StatusFailed  DeliveryStatus = "failed"
)

// Notification is a message addressed to a user or a whole organization.
// Status transitions pending -> sent or pending -> failed once fanout
// completes.
type Notification struct {
	ID                   string         `json:"id"`
	TargetUserID         string         `json:"target_user_id,omitempty"`
	TargetOrganizationID string         `json:"target_organization_id"`
	Type                 string         `json:"type"`
	Title                string         `json:"title"`
	Message              string         `json:"message"`
	Data                 map[string]any `json:"data,omitempty"`
	Priority             Priority       `json:"priority"`
	Channels             []string       `json:"channels,omitempty"`
	Status               DeliveryStatus `json:"status"`
}

// Envelope is the channel-agnostic wire payload handed to a session channel:
// the notification plus delivery metadata.
type Envelope struct {
	Notification
	SessionID   string    `json:"session_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}
