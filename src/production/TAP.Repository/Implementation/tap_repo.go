package implementation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

type PostgresTapRepository struct {
	db *sql.DB
}

func NewPostgresTapRepository(db *sql.DB) *PostgresTapRepository {
	return &PostgresTapRepository{db: db}
}

// Create tap (idempotent upsert)
func (r *PostgresTapRepository) CreateTap(ctx context.Context, tap *tapmodels.Tap) error {
	if tap.TapID == "" {
		tap.TapID = uuid.New().String()
	}
	if tap.CreatedAt.IsZero() {
		tap.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO taps (tap_id, name, type, topic, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tap_id)
		DO UPDATE SET name = EXCLUDED.name, type = EXCLUDED.type, topic = EXCLUDED.topic
	`

	_, err := r.db.ExecContext(ctx, query, tap.TapID, tap.Name, tap.Type, tap.Topic, tap.CreatedAt)
	return err
}

func (r *PostgresTapRepository) GetTap(ctx context.Context, tapID string) (*tapmodels.Tap, error) {
	query := `SELECT tap_id, name, type, topic, created_at FROM taps WHERE tap_id = $1`

	var tap tapmodels.Tap

	err := r.db.QueryRowContext(ctx, query, tapID).Scan(&tap.TapID, &tap.Name, &tap.Type, &tap.Topic, &tap.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &tap, nil
}

func (r *PostgresTapRepository) ListTaps(ctx context.Context) ([]tapmodels.Tap, error) {
	query := `SELECT tap_id, name, type, topic, created_at FROM taps ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taps []tapmodels.Tap
	for rows.Next() {
		var tap tapmodels.Tap
		if err := rows.Scan(&tap.TapID, &tap.Name, &tap.Type, &tap.Topic, &tap.CreatedAt); err != nil {
			return nil, err
		}
		taps = append(taps, tap)
	}

	return taps, rows.Err()
}

func (r *PostgresTapRepository) UpdateTap(ctx context.Context, tap *tapmodels.Tap) error {
	query := `
		UPDATE taps
		SET name = $2, type = $3, topic = $4
		WHERE tap_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, tap.TapID, tap.Name, tap.Type, tap.Topic)
	return err
}

func (r *PostgresTapRepository) DeleteTap(ctx context.Context, tapID string) error {
	query := `DELETE FROM taps WHERE tap_id = $1`

	_, err := r.db.ExecContext(ctx, query, tapID)
	return err
}
