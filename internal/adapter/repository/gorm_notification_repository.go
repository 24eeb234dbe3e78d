package repository

import (
	"context"

	"gorm.io/gorm"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type gormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if err := r.db.WithContext(ctx).Create(newNotificationRow(notification)).Error; err != nil {
		return errors.Dependency("Failed to create notification", err)
	}
	return nil
}

func (r *gormNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*entity.Notification, error) {
	query := r.db.WithContext(ctx).Where("recipient_id = ?", recipientID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []notificationRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Dependency("Failed to list notifications", err)
	}
	notifications := make([]*entity.Notification, 0, len(rows))
	for i := range rows {
		notifications = append(notifications, rows[i].toEntity())
	}
	return notifications, nil
}

func (r *gormNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&notificationRow{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, errors.Dependency("Failed to mark notifications as read", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&notificationRow{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Dependency("Failed to count notifications", err)
	}
	return count, nil
}
