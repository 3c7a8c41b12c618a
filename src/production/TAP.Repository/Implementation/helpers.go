package implementation

import "github.com/google/uuid"

// ensureID fills in a fresh UUID when the caller did not set one
func ensureID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

// Tap Repository (CRUD)
// ├── CreateTap() - Idempotent upsert
// ├── GetTap() - Single tap lookup
// ├── ListTaps() - All taps, feeds the topic table
// ├── UpdateTap() - Update name/type/topic
// └── DeleteTap() - Remove tap

// User Repository (CRUD + accounting)
// ├── Create() - Idempotent upsert
// ├── GetByID() / GetByUsername() - Lookups
// ├── GetAll() - Score board order
// ├── RecordPour() - Credit a finished pour
// └── DeductCredit() - Spend one credit if available

// Session Repository (append-mostly)
// ├── CreateSession() - Open a session
// ├── UpdateSession() - Stamp stop time and total
// ├── FindSession() - Single session lookup
// ├── AppendEvent() - One row per telemetry reading
// ├── ListEventsBySession() - Chronological
// └── ListSessionsByUser() - Most recent first
