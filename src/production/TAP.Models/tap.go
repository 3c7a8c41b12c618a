package tapmodels

import "time"

// Tap represents a physical dispensing point with one exclusive user at a time
type Tap struct {
	TapID     string    `json:"tap_id" db:"tap_id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"`
	Topic     string    `json:"topic" db:"topic"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
