package interfaces

import (
	"context"

	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

// UserRepository stores users' display fields and pour accounting.
// Authentication is handled elsewhere; user ids arrive here already
// resolved.
type UserRepository interface {
	Create(ctx context.Context, user *tapmodels.User) (*tapmodels.User, error)
	GetByID(ctx context.Context, userID string) (*tapmodels.User, error)
	GetByUsername(ctx context.Context, username string) (*tapmodels.User, error)
	GetAll(ctx context.Context) ([]*tapmodels.User, error)

	// RecordPour credits a finished pour to the user's score and total
	RecordPour(ctx context.Context, userID string, amount float64) error

	// DeductCredit takes one credit when the user has any left and
	// reports whether it did
	DeductCredit(ctx context.Context, userID string) (bool, error)
}
