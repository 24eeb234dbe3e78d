package repository

import (
	"context"

	"gorm.io/gorm"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type gormBadgeRepository struct {
	db *gorm.DB
}

func NewGormBadgeRepository(db *gorm.DB) repository.BadgeRepository {
	return &gormBadgeRepository{db: db}
}

func (r *gormBadgeRepository) Create(ctx context.Context, badge *entity.Badge) error {
	row := &badgeRow{
		ID:          badge.ID,
		OwnerID:     badge.OwnerID,
		ReportID:    badge.ReportID,
		Title:       badge.Title,
		Description: badge.Description,
		CreatedAt:   badge.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return errors.Dependency("Failed to create badge", err)
	}
	return nil
}

func (r *gormBadgeRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Badge, error) {
	var rows []badgeRow
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.Dependency("Failed to list badges", err)
	}

	badges := make([]*entity.Badge, 0, len(rows))
	for _, row := range rows {
		badges = append(badges, &entity.Badge{
			ID:          row.ID,
			OwnerID:     row.OwnerID,
			ReportID:    row.ReportID,
			Title:       row.Title,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return badges, nil
}

func (r *gormBadgeRepository) ExistsForReport(ctx context.Context, reportID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&badgeRow{}).Where("report_id = ?", reportID).Count(&count).Error; err != nil {
		return false, errors.Dependency("Failed to query badges", err)
	}
	return count > 0, nil
}
