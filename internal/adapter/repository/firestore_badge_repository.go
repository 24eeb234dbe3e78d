package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type firestoreBadgeRepository struct {
	client *firestore.Client
}

func NewFirestoreBadgeRepository(client *firestore.Client) repository.BadgeRepository {
	return &firestoreBadgeRepository{
		client: client,
	}
}

func (r *firestoreBadgeRepository) Create(ctx context.Context, badge *entity.Badge) error {
	_, err := r.client.Collection(badgesCollection).Doc(badge.ID).Set(ctx, badge)
	if err != nil {
		return errors.Dependency("Failed to create badge", err)
	}
	return nil
}

func (r *firestoreBadgeRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Badge, error) {
	iter := r.client.Collection(badgesCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	badges := []*entity.Badge{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Dependency("Failed to list badges", err)
		}

		var badge entity.Badge
		if err := doc.DataTo(&badge); err != nil {
			return nil, errors.Internal("Failed to parse badge data", err)
		}
		badges = append(badges, &badge)
	}
	return badges, nil
}

func (r *firestoreBadgeRepository) ExistsForReport(ctx context.Context, reportID string) (bool, error) {
	iter := r.client.Collection(badgesCollection).Where("reportId", "==", reportID).Limit(1).Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, errors.Dependency("Failed to query badges", err)
	}
	return true, nil
}
