package tapmodels

import "time"

// User represents a user in the system. Identity resolution happens
// outside this service; UserID is an opaque stable identifier and
// Username is display-only.
type User struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Username     string    `json:"username" db:"username"`
	Score        int       `json:"score" db:"score"`
	Credits      float64   `json:"credits" db:"credits"`
	AmountTapped float64   `json:"amount_tapped" db:"amount_tapped"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
