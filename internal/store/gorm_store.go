package store

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nihalshetty-boop/listri/internal/domain"
)

// GormStore persists messages in Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.ChatMessage{}); err != nil {
		return nil, fmt.Errorf("failed to migrate chat_messages: %w", err)
	}

	return &GormStore{db: db}, nil
}

func (s *GormStore) Persist(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	stored := msg
	stored.ID = 0 // the store owns id assignment
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return domain.ChatMessage{}, &domain.PersistenceError{Op: "persist", Err: err}
	}
	return stored, nil
}

func (s *GormStore) QueryByRoom(ctx context.Context, chatRoomID string) ([]domain.ChatMessage, error) {
	return s.query(ctx, "query_by_room", "chat_room_id = ?", chatRoomID)
}

func (s *GormStore) QueryByListing(ctx context.Context, listingID string) ([]domain.ChatMessage, error) {
	return s.query(ctx, "query_by_listing", "listing_id = ?", listingID)
}

func (s *GormStore) QueryByParticipants(ctx context.Context, senderID, receiverID string) ([]domain.ChatMessage, error) {
	return s.query(ctx, "query_by_participants", "sender_id = ? AND receiver_id = ?", senderID, receiverID)
}

func (s *GormStore) query(ctx context.Context, op, cond string, args ...interface{}) ([]domain.ChatMessage, error) {
	msgs := []domain.ChatMessage{}
	err := s.db.WithContext(ctx).
		Where(cond, args...).
		Order("timestamp asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, &domain.PersistenceError{Op: op, Err: err}
	}
	return msgs, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
