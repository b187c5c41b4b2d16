/*
Package sqlstore implements store.Store with gorm on an embedded SQLite database.

It suits single-node deployments that want durable history without running a
database server. Tables are created with AutoMigrate.
*/
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"roomchat/internal/app/store"
)

type roomRow struct {
	Seq         uint64 `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;not null"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	CreatedAt   time.Time
}

func (roomRow) TableName() string { return "rooms" }

type presenceRow struct {
	Seq          uint64 `gorm:"primaryKey;autoIncrement"`
	ConnectionID string `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"index;not null"`
	RoomID       string `gorm:"index;not null"`
	RoomName     string `gorm:"not null"`
	JoinedAt     time.Time
}

func (presenceRow) TableName() string { return "presence" }

type messageRow struct {
	Seq       uint64 `gorm:"primaryKey;autoIncrement"`
	ID        string `gorm:"uniqueIndex;not null"`
	RoomID    string `gorm:"index;not null"`
	Sender    string
	Body      string
	CreatedAt time.Time
}

func (messageRow) TableName() string { return "messages" }

// Store is a gorm/SQLite-backed store.Store.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and migrates the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// SQLite serializes writers; one connection also keeps ":memory:" databases shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&roomRow{}, &presenceRow{}, &messageRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) InsertRoom(ctx context.Context, room store.Room) error {
	row := roomRow{ID: room.ID, Name: room.Name, Description: room.Description, CreatedAt: room.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (s *Store) FindRoomByName(ctx context.Context, name string) (store.Room, error) {
	return s.findRoom(ctx, "name = ?", name)
}

func (s *Store) FindRoomByID(ctx context.Context, id string) (store.Room, error) {
	return s.findRoom(ctx, "id = ?", id)
}

func (s *Store) findRoom(ctx context.Context, where string, arg string) (store.Room, error) {
	var row roomRow
	if err := s.db.WithContext(ctx).First(&row, where, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Room{}, store.ErrNotFound
		}
		return store.Room{}, fmt.Errorf("failed to find room: %w", err)
	}
	return row.toRoom(), nil
}

func (s *Store) ListRooms(ctx context.Context) ([]store.Room, error) {
	var rows []roomRow
	if err := s.db.WithContext(ctx).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	rooms := make([]store.Room, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, row.toRoom())
	}
	return rooms, nil
}

func (s *Store) InsertPresence(ctx context.Context, p store.Presence) error {
	row := presenceRow{
		ConnectionID: p.ConnectionID,
		Username:     p.Username,
		RoomID:       p.RoomID,
		RoomName:     p.RoomName,
		JoinedAt:     p.JoinedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("failed to insert presence: %w", err)
	}
	return nil
}

func (s *Store) FindPresenceByConnection(ctx context.Context, connectionID string) (store.Presence, error) {
	return s.findPresence(s.db.WithContext(ctx).Where("connection_id = ?", connectionID))
}

func (s *Store) FindPresenceByUsername(ctx context.Context, username string) (store.Presence, error) {
	return s.findPresence(s.db.WithContext(ctx).Where("username = ?", username).Order("seq"))
}

func (s *Store) findPresence(query *gorm.DB) (store.Presence, error) {
	var row presenceRow
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Presence{}, store.ErrNotFound
		}
		return store.Presence{}, fmt.Errorf("failed to find presence: %w", err)
	}
	return row.toPresence(), nil
}

func (s *Store) ListPresenceByRoom(ctx context.Context, roomID string) ([]store.Presence, error) {
	var rows []presenceRow
	if err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("seq").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}

	occupants := make([]store.Presence, 0, len(rows))
	for _, row := range rows {
		occupants = append(occupants, row.toPresence())
	}
	return occupants, nil
}

func (s *Store) DeletePresence(ctx context.Context, connectionID string) (store.Presence, error) {
	var removed store.Presence
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row presenceRow
		if err := tx.First(&row, "connection_id = ?", connectionID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&presenceRow{}, "seq = ?", row.Seq).Error; err != nil {
			return err
		}
		removed = row.toPresence()
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Presence{}, store.ErrNotFound
		}
		return store.Presence{}, fmt.Errorf("failed to delete presence: %w", err)
	}
	return removed, nil
}

func (s *Store) ClearPresence(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&presenceRow{}).Error; err != nil {
		return fmt.Errorf("failed to clear presence: %w", err)
	}
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, msg store.Message) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&roomRow{}).Where("id = ?", msg.RoomID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check room: %w", err)
		}
		if count == 0 {
			return store.ErrNotFound
		}

		row := messageRow{ID: msg.ID, RoomID: msg.RoomID, Sender: msg.Sender, Body: msg.Body, CreatedAt: msg.CreatedAt}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
		return nil
	})
}

func (s *Store) ListRecentMessages(ctx context.Context, roomID string, limit int) ([]store.Message, error) {
	if limit <= 0 {
		return []store.Message{}, nil
	}

	var rows []messageRow
	if err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("seq desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	messages := make([]store.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, store.Message{
			ID:        row.ID,
			RoomID:    row.RoomID,
			Sender:    row.Sender,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r roomRow) toRoom() store.Room {
	return store.Room{ID: r.ID, Name: r.Name, Description: r.Description, CreatedAt: r.CreatedAt}
}

func (r presenceRow) toPresence() store.Presence {
	return store.Presence{
		ConnectionID: r.ConnectionID,
		Username:     r.Username,
		RoomID:       r.RoomID,
		RoomName:     r.RoomName,
		JoinedAt:     r.JoinedAt,
	}
}
