package implementation

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	tapmodels "gitlab.com/maplesense1/tap.queue_server/src/production/TAP.Models"
)

type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create user
func (r *PostgresUserRepository) Create(ctx context.Context, user *tapmodels.User) (*tapmodels.User, error) {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = time.Now().UTC()

	query := `
		INSERT INTO users (user_id, username, score, credits, amount_tapped, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id)
		DO UPDATE SET username = EXCLUDED.username, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, user.UserID, user.Username,
		user.Score, user.Credits, user.AmountTapped, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Read users
func (r *PostgresUserRepository) GetByID(ctx context.Context, userID string) (*tapmodels.User, error) {
	query := `SELECT user_id, username, score, credits, amount_tapped, created_at, updated_at FROM users WHERE user_id = $1`

	var user tapmodels.User

	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.UserID, &user.Username,
		&user.Score, &user.Credits, &user.AmountTapped, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*tapmodels.User, error) {
	query := `SELECT user_id, username, score, credits, amount_tapped, created_at, updated_at FROM users WHERE username = $1`

	var user tapmodels.User

	err := r.db.QueryRowContext(ctx, query, username).Scan(&user.UserID, &user.Username,
		&user.Score, &user.Credits, &user.AmountTapped, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetAll(ctx context.Context) ([]*tapmodels.User, error) {
	query := `SELECT user_id, username, score, credits, amount_tapped, created_at, updated_at FROM users ORDER BY score DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*tapmodels.User
	for rows.Next() {
		var user tapmodels.User
		if err := rows.Scan(&user.UserID, &user.Username, &user.Score,
			&user.Credits, &user.AmountTapped, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

// RecordPour credits a finished pour to the user
func (r *PostgresUserRepository) RecordPour(ctx context.Context, userID string, amount float64) error {
	query := `
		UPDATE users
		SET score = score + round($2)::int, amount_tapped = amount_tapped + $2, updated_at = $3
		WHERE user_id = $1
	`

	_, err := r.db.ExecContext(ctx, query, userID, amount, time.Now().UTC())
	return err
}

// DeductCredit takes one credit when any is left
func (r *PostgresUserRepository) DeductCredit(ctx context.Context, userID string) (bool, error) {
	query := `
		UPDATE users
		SET credits = credits - 1, updated_at = $2
		WHERE user_id = $1 AND credits > 0
	`

	result, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
