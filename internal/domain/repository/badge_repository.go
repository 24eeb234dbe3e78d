package repository

import (
	"context"

	"civiq/internal/domain/entity"
)

type BadgeRepository interface {
	Create(ctx context.Context, badge *entity.Badge) error
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Badge, error)
	ExistsForReport(ctx context.Context, reportID string) (bool, error)
}
