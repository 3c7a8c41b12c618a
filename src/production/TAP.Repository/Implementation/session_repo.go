package implementation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

type PostgresSessionRepository struct {
	db *sql.DB
}

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Create session
func (r *PostgresSessionRepository) CreateSession(ctx context.Context, session *tapmodels.TapSession) error {
	if session.SessionID == "" {
		session.SessionID = uuid.New().String()
	}
	if session.StartTime.IsZero() {
		session.StartTime = time.Now().UTC()
	}

	query := `
		INSERT INTO tap_sessions (session_id, tap_id, user_id, start_time, stop_time, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, session.SessionID, session.TapID, session.UserID,
		session.StartTime, session.StopTime, session.TotalAmount)
	return err
}

// UpdateSession stamps the closing fields of a session
func (r *PostgresSessionRepository) UpdateSession(ctx context.Context, session *tapmodels.TapSession) error {
	query := `
		UPDATE tap_sessions
		SET stop_time = $2, total_amount = $3
		WHERE session_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, session.SessionID, session.StopTime, session.TotalAmount)
	return err
}

func (r *PostgresSessionRepository) FindSession(ctx context.Context, sessionID string) (*tapmodels.TapSession, error) {
	query := `SELECT session_id, tap_id, user_id, start_time, stop_time, total_amount FROM tap_sessions WHERE session_id = $1`

	var session tapmodels.TapSession

	err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&session.SessionID, &session.TapID,
		&session.UserID, &session.StartTime, &session.StopTime, &session.TotalAmount)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &session, nil
}

func (r *PostgresSessionRepository) AppendEvent(ctx context.Context, event tapmodels.TapEvent) error {
	event.EventID = ensureID(event.EventID)

	query := `
		INSERT INTO tap_events (event_id, session_id, timestamp, amount)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecContext(ctx, query, event.EventID, event.SessionID, event.Timestamp, event.Amount)
	return err
}

func (r *PostgresSessionRepository) ListEventsBySession(ctx context.Context, sessionID string) ([]tapmodels.TapEvent, error) {
	query := `
		SELECT event_id, session_id, timestamp, amount
		FROM tap_events
		WHERE session_id = $1
		ORDER BY timestamp ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []tapmodels.TapEvent
	for rows.Next() {
		var event tapmodels.TapEvent
		if err := rows.Scan(&event.EventID, &event.SessionID, &event.Timestamp, &event.Amount); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func (r *PostgresSessionRepository) ListSessionsByUser(ctx context.Context, userID string) ([]tapmodels.TapSession, error) {
	query := `
		SELECT session_id, tap_id, user_id, start_time, stop_time, total_amount
		FROM tap_sessions
		WHERE user_id = $1
		ORDER BY start_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []tapmodels.TapSession
	for rows.Next() {
		var session tapmodels.TapSession
		if err := rows.Scan(&session.SessionID, &session.TapID, &session.UserID,
			&session.StartTime, &session.StopTime, &session.TotalAmount); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}
