package interfaces

import (
	"context"

	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

// TapRepository manages the tap registry. The device link builds its
// tap-id to topic table from ListTaps at startup, before subscribing.
type TapRepository interface {
	CreateTap(ctx context.Context, tap *tapmodels.Tap) error
	GetTap(ctx context.Context, tapID string) (*tapmodels.Tap, error)
	ListTaps(ctx context.Context) ([]tapmodels.Tap, error)
	UpdateTap(ctx context.Context, tap *tapmodels.Tap) error
	DeleteTap(ctx context.Context, tapID string) error
}
