package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	_, err := r.client.Collection(notificationsCollection).Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.Dependency("Failed to create notification", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*entity.Notification, error) {
	query := r.client.Collection(notificationsCollection).
		Where("recipientId", "==", recipientID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	notifications := []*entity.Notification{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Dependency("Failed to list notifications", err)
		}

		var notification entity.Notification
		if err := doc.DataTo(&notification); err != nil {
			return nil, errors.Internal("Failed to parse notification data", err)
		}
		notifications = append(notifications, &notification)
	}
	return notifications, nil
}

// MarkAllRead flips the unread documents with a BulkWriter.
func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	iter := r.client.Collection(notificationsCollection).
		Where("recipientId", "==", recipientID).
		Where("isRead", "==", false).
		Documents(ctx)
	defer iter.Stop()

	writer := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			writer.End()
			return 0, errors.Dependency("Failed to query unread notifications", err)
		}

		job, err := writer.Update(doc.Ref, []firestore.Update{{Path: "isRead", Value: true}})
		if err != nil {
			writer.End()
			return 0, errors.Dependency("Failed to queue notification update", err)
		}
		jobs = append(jobs, job)
	}
	writer.End()

	var changed int64
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		changed++
	}
	if firstErr != nil {
		return changed, errors.Dependency("Failed to mark notifications as read", firstErr)
	}
	return changed, nil
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	query := r.client.Collection(notificationsCollection).
		Where("recipientId", "==", recipientID).
		Where("isRead", "==", false)
	count, err := countQuery(ctx, query)
	if err != nil {
		return 0, errors.Dependency("Failed to count notifications", err)
	}
	return count, nil
}
