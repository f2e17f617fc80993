package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"domainmarket/marketplace-backend/pkg/errs"
)

// Store handles notification and dead-letter persistence.
type Store interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)

	CreateDeadLetter(ctx context.Context, dl *EmailDeadLetter) error
	ListUnretriedDeadLetters(ctx context.Context, olderThan time.Time, limit int) ([]EmailDeadLetter, error)
	MarkDeadLetterRetried(ctx context.Context, id uuid.UUID) error
}

type postgresStore struct {
	db *gorm.DB
}

// NewStore creates the notification store.
func NewStore(db *gorm.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *postgresStore) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error) {
	var result []Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return result, nil
}

// MarkAsRead is idempotent: marking an already-read notification is a no-op
// success. Only a missing row is an error.
func (s *postgresStore) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND is_read = false", id).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var n Notification
		err := s.db.WithContext(ctx).Select("id").First(&n, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
		// Already read.
	}
	return nil
}

func (s *postgresStore) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *postgresStore) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND is_read = false", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *postgresStore) CreateDeadLetter(ctx context.Context, dl *EmailDeadLetter) error {
	if dl.ID == uuid.Nil {
		dl.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(dl).Error; err != nil {
		return fmt.Errorf("failed to create dead letter: %w", err)
	}
	return nil
}

func (s *postgresStore) ListUnretriedDeadLetters(ctx context.Context, olderThan time.Time, limit int) ([]EmailDeadLetter, error) {
	var result []EmailDeadLetter
	err := s.db.WithContext(ctx).
		Where("retried_at IS NULL AND created_at < ?", olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dead letters: %w", err)
	}
	return result, nil
}

func (s *postgresStore) MarkDeadLetterRetried(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&EmailDeadLetter{}).
		Where("id = ?", id).
		Update("retried_at", time.Now()).Error
	if err != nil {
		return fmt.Errorf("failed to mark dead letter retried: %w", err)
	}
	return nil
}
