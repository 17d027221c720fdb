// Package registry owns the table of live client sessions. All session
// state is mutated through the registry's synchronized operations; no other
// component touches the underlying map.
package registry

import (
	"context"
	"time"

	"github.com/grantwise/matchd/internal/domain/model"
)

// Channel is one delivery mechanism exposed by a session. A session may
// expose zero or more channels; the set is fixed at admission.
type Channel interface {
	// Name identifies the mechanism, e.g. "stream" or "webhook".
	Name() string

	// Primary reports whether this channel is used for normal-priority
	// notifications. Elevated priorities attempt every channel.
	Primary() bool

	// Send delivers one envelope. It must respect ctx and return rather
	// than block on a slow or disconnected consumer.
	Send(ctx context.Context, env model.Envelope) error

	// Close releases the channel's resources. Idempotent.
	Close() error
}

// Session is the snapshot view of a live connection returned by registry
// reads. Mutations go through registry operations only.
type Session struct {
	ID             string
	UserID         string
	OrganizationID string
	Topics         []string
	LastHeartbeat  time.Time
	Channels       []Channel
}

// record is the registry-internal mutable form of a session.
type record struct {
	id            string
	userID        string
	orgID         string
	topics        map[string]struct{}
	lastHeartbeat time.Time
	channels      []Channel
}

func (r *record) snapshot() Session {
	topics := make([]string, 0, len(r.topics))
	for t := range r.topics {
		topics = append(topics, t)
	}
	channels := make([]Channel, len(r.channels))
	copy(channels, r.channels)
	return Session{
		ID:             r.id,
		UserID:         r.userID,
		OrganizationID: r.orgID,
		Topics:         topics,
		LastHeartbeat:  r.lastHeartbeat,
		Channels:       channels,
	}
}
