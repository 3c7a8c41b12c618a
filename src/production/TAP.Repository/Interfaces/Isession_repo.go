package interfaces

import (
	"context"

	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

// SessionRepository is the durable record of tap usage. Queue order is
// ephemeral; sessions and their events are what survives a restart.
type SessionRepository interface {
	CreateSession(ctx context.Context, session *tapmodels.TapSession) error
	UpdateSession(ctx context.Context, session *tapmodels.TapSession) error
	FindSession(ctx context.Context, sessionID string) (*tapmodels.TapSession, error)

	// AppendEvent records one telemetry reading for an open session
	AppendEvent(ctx context.Context, event tapmodels.TapEvent) error

	// ListEventsBySession returns a session's events ordered by time ascending
	ListEventsBySession(ctx context.Context, sessionID string) ([]tapmodels.TapEvent, error)

	// ListSessionsByUser returns a user's sessions ordered by start time descending
	ListSessionsByUser(ctx context.Context, userID string) ([]tapmodels.TapSession, error)
}
