/*
Package pgstore implements store.Store on PostgreSQL.

The connection pool is managed by pgxpool; the schema is applied at startup
from embedded goose migrations. Room name uniqueness and message/presence room
references are enforced by constraints, and constraint violations are mapped
to store.ErrDuplicate and store.ErrNotFound.
*/
package pgstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"roomchat/internal/app/store"
	"roomchat/internal/pkg/logx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is a PostgreSQL-backed store.Store.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open initializes a PostgreSQL connection pool, applies pending migrations and returns the store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := runMigrations(ctx, sqlDB); err != nil {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// runMigrations applies all pending migrations from the embedded file system.
func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Database migrations applied successfully.")
	return nil
}

func (s *Store) InsertRoom(ctx context.Context, room store.Room) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		room.ID, room.Name, room.Description, room.CreatedAt,
	)
	if IsUniqueViolation(err) {
		return store.ErrDuplicate
	}
	return err
}

func (s *Store) FindRoomByName(ctx context.Context, name string) (store.Room, error) {
	return s.findRoom(ctx, `SELECT id, name, description, created_at FROM rooms WHERE name = $1`, name)
}

func (s *Store) FindRoomByID(ctx context.Context, id string) (store.Room, error) {
	return s.findRoom(ctx, `SELECT id, name, description, created_at FROM rooms WHERE id = $1`, id)
}

func (s *Store) findRoom(ctx context.Context, query string, arg string) (store.Room, error) {
	var room store.Room
	err := s.pool.QueryRow(ctx, query, arg).Scan(&room.ID, &room.Name, &room.Description, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Room{}, store.ErrNotFound
	}
	if err != nil {
		return store.Room{}, err
	}
	return room, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]store.Room, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, created_at FROM rooms ORDER BY seq`)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Room, error) {
		var room store.Room
		err := row.Scan(&room.ID, &room.Name, &room.Description, &room.CreatedAt)
		return room, err
	})
}

func (s *Store) InsertPresence(ctx context.Context, p store.Presence) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO presence (connection_id, username, room_id, room_name, joined_at) VALUES ($1, $2, $3, $4, $5)`,
		p.ConnectionID, p.Username, p.RoomID, p.RoomName, p.JoinedAt,
	)
	switch {
	case IsUniqueViolation(err):
		return store.ErrDuplicate
	case IsForeignKeyViolation(err):
		return store.ErrNotFound
	}
	return err
}

const presenceColumns = `connection_id, username, room_id, room_name, joined_at`

func scanPresence(row pgx.Row) (store.Presence, error) {
	var p store.Presence
	err := row.Scan(&p.ConnectionID, &p.Username, &p.RoomID, &p.RoomName, &p.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Presence{}, store.ErrNotFound
	}
	return p, err
}

func (s *Store) FindPresenceByConnection(ctx context.Context, connectionID string) (store.Presence, error) {
	return scanPresence(s.pool.QueryRow(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE connection_id = $1`, connectionID))
}

func (s *Store) FindPresenceByUsername(ctx context.Context, username string) (store.Presence, error) {
	return scanPresence(s.pool.QueryRow(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE username = $1 ORDER BY seq LIMIT 1`, username))
}

func (s *Store) ListPresenceByRoom(ctx context.Context, roomID string) ([]store.Presence, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE room_id = $1 ORDER BY seq`, roomID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Presence, error) {
		return scanPresence(row)
	})
}

func (s *Store) DeletePresence(ctx context.Context, connectionID string) (store.Presence, error) {
	return scanPresence(s.pool.QueryRow(ctx,
		`DELETE FROM presence WHERE connection_id = $1 RETURNING `+presenceColumns, connectionID))
}

func (s *Store) ClearPresence(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM presence`)
	return err
}

func (s *Store) InsertMessage(ctx context.Context, msg store.Message) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO messages (id, room_id, sender, body, created_at) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.RoomID, msg.Sender, msg.Body, msg.CreatedAt,
	)
	if IsForeignKeyViolation(err) {
		return store.ErrNotFound
	}
	return err
}

func (s *Store) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	if limit <= 0 {
		return []store.Message{}, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, room_id, sender, body, created_at FROM messages WHERE room_id = $1 ORDER BY seq DESC LIMIT $2`,
		roomID, limit,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.Message, error) {
		var m store.Message
		err := row.Scan(&m.ID, &m.RoomID, &m.Sender, &m.Body, &m.CreatedAt)
		return m, err
	})
}

// Exec runs a raw statement; used by tests to reset tables.
func (s *Store) Exec(ctx context.Context, stmt string) error {
	_, err := s.pool.Exec(ctx, stmt)
	return err
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
