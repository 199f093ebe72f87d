// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/votecraft/powerplays/internal/models"
)

// DB is the shared connection pool. Nil until Connect succeeds; the game
// layer treats a nil DB as "persistence disabled" and plays on.
var DB *pgxpool.Pool

// Connect establishes the pool and verifies connectivity.
func Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse database config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("database ping: %w", err)
	}
	DB = pool
	logrus.Info("Connected to Postgres")
	return nil
}

// Migrate creates the tables the service needs if they do not exist.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx, `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT UNIQUE NOT NULL,
	username TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	elo INT NOT NULL DEFAULT 1500,
	is_ephemeral BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS games (
	id UUID PRIMARY KEY,
	initial_state JSONB,
	final_state JSONB,
	winner_id UUID,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	finished_at TIMESTAMPTZ
);`)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreateUser inserts a new user row.
func CreateUser(ctx context.Context, u *models.User) error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	_, err := DB.Exec(ctx,
		`INSERT INTO users (id, email, username, password_hash, elo, is_ephemeral)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Elo, u.IsEphemeral)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Email, err)
	}
	return nil
}

// GetUserByEmail fetches a user by email. Returns pgx.ErrNoRows wrapped
// if the user does not exist.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not connected")
	}
	var u models.User
	err := DB.QueryRow(ctx,
		`SELECT id, email, username, password_hash, elo, is_ephemeral
		 FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.Elo, &u.IsEphemeral)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("user %s: %w", email, err)
		}
		return nil, fmt.Errorf("query user %s: %w", email, err)
	}
	return &u, nil
}

// UpsertInitialGameState records the post-deal snapshot of a game.
// Called from a goroutine; errors are logged, not returned.
func UpsertInitialGameState(gameID uuid.UUID, snapshot interface{}) {
	if DB == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := json.Marshal(snapshot)
	if err != nil {
		logrus.Errorf("Game %s: marshal initial state: %v", gameID, err)
		return
	}
	_, err = DB.Exec(ctx,
		`INSERT INTO games (id, initial_state) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET initial_state = EXCLUDED.initial_state`,
		gameID, data)
	if err != nil {
		logrus.Errorf("Game %s: persist initial state: %v", gameID, err)
	}
}

// StoreFinalGameStateInDB records the final snapshot and winner of a
// finished game.
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, winnerID uuid.UUID, snapshot interface{}) {
	if DB == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		logrus.Errorf("Game %s: marshal final state: %v", gameID, err)
		return
	}
	var winner interface{}
	if winnerID != uuid.Nil {
		winner = winnerID
	}
	_, err = DB.Exec(ctx,
		`INSERT INTO games (id, final_state, winner_id, finished_at) VALUES ($1, $2, $3, now())
		 ON CONFLICT (id) DO UPDATE
		 SET final_state = EXCLUDED.final_state,
		     winner_id = EXCLUDED.winner_id,
		     finished_at = EXCLUDED.finished_at`,
		gameID, data, winner)
	if err != nil {
		logrus.Errorf("Game %s: persist final state: %v", gameID, err)
	}
}
