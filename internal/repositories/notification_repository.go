package repositories

import (
	"context"
	"errors"

	"github.com/kinjaldesarla/PostIt/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the follow-request
// ledger. The ledger is authoritative for "requested"; the membership
// lists on the user documents are authoritative for "following".
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	FindFollow(ctx context.Context, recipientID, senderID string) (*models.Notification, error)
	GetByRecipientID(ctx context.Context, recipientID string) ([]models.Notification, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteFollow(ctx context.Context, recipientID, senderID string) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository backed
// by PostgreSQL
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *postgresNotificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// FindFollow looks up the live follow row for a (recipient, sender) pair.
// At most one such row should exist; the lookup is done before every insert
// to keep it that way.
func (r *postgresNotificationRepository) FindFollow(ctx context.Context, recipientID, senderID string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, models.NotificationTypeFollow).
		First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *postgresNotificationRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *postgresNotificationRepository) DeleteByID(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Notification{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFollow removes the follow row for a pair if one exists. Callers on
// the unfollow/remove-follower paths rely on this being a no-op when the
// row is already gone.
func (r *postgresNotificationRepository) DeleteFollow(ctx context.Context, recipientID, senderID string) error {
	return r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", recipientID, senderID, models.NotificationTypeFollow).
		Delete(&models.Notification{}).Error
}
