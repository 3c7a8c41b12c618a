package tapmodels

// Device status values published on the status topic
const (
	StatusIdle    = "idle"
	StatusPouring = "pouring"
	StatusStopped = "stopped"
	StatusDone    = "done"
)

// Commands published on the cmd topic
const (
	CommandReset = "reset"
	CommandDone  = "done"
)

// DeviceStatus is the last-known telemetry for a tap. Volatile
// coordinator state, never persisted; it only feeds the watchdogs.
type DeviceStatus struct {
	LastStatus string
	LastAmount float64
}
