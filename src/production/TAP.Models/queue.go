package tapmodels

import "time"

// QueueEntry is one user's place in a tap's wait queue. Entries are
// created on enqueue and removed on dequeue/cancel, never mutated.
type QueueEntry struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	TapID    string    `json:"tap_id"`
	QueuedAt time.Time `json:"queued_at"`
}
