package repository

import (
	"context"

	"civiq/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*entity.Notification, error)
	// MarkAllRead flips every unread notification of the recipient and returns how many changed.
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
}
