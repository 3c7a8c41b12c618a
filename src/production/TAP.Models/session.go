package tapmodels

import "time"

// TapSession represents one continuous period of tap usage by one user,
// bounded by device status transitions. StopTime is nil until the
// session is closed.
type TapSession struct {
	SessionID   string     `json:"session_id" db:"session_id"`
	TapID       string     `json:"tap_id" db:"tap_id"`
	UserID      string     `json:"user_id" db:"user_id"`
	StartTime   time.Time  `json:"start_time" db:"start_time"`
	StopTime    *time.Time `json:"stop_time,omitempty" db:"stop_time"`
	TotalAmount float64    `json:"total_amount" db:"total_amount"`
}

// Closed reports whether the session has been stamped with a stop time
func (s *TapSession) Closed() bool {
	return s.StopTime != nil
}

// TapEvent is one telemetry amount reading recorded while a session was
// open. Append-only; the amount is the device's cumulative reading, not
// a delta.
type TapEvent struct {
	EventID   string    `json:"event_id" db:"event_id"`
	SessionID string    `json:"session_id" db:"session_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Amount    float64   `json:"amount" db:"amount"`
}
