package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

type gormReportRepository struct {
	db *gorm.DB
}

func NewGormReportRepository(db *gorm.DB) repository.ReportRepository {
	return &gormReportRepository{db: db}
}

func (r *gormReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if err := r.db.WithContext(ctx).Create(newReportRow(report)).Error; err != nil {
		return errors.Dependency("Failed to create report", err)
	}
	return nil
}

func (r *gormReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	var row reportRow
	err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Dependency("Failed to get report", err)
	}
	return row.toEntity(), nil
}

func (r *gormReportRepository) UpdateStatus(ctx context.Context, report *entity.Report) error {
	res := r.db.WithContext(ctx).Model(&reportRow{}).Where("id = ?", report.ID).Updates(map[string]interface{}{
		"status":         string(report.Status),
		"in_progress_at": report.InProgressAt,
		"resolved_at":    report.ResolvedAt,
	})
	if res.Error != nil {
		return errors.Dependency("Failed to update report status", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("Report", nil)
	}
	return nil
}

// IncrementDuplicateCount bumps the counter in a single UPDATE and re-reads the row.
func (r *gormReportRepository) IncrementDuplicateCount(ctx context.Context, id string) (*entity.Report, error) {
	var row reportRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&reportRow{}).Where("id = ?", id).
			UpdateColumn("duplicate_count", gorm.Expr("duplicate_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&row, "id = ?", id).Error
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Dependency("Failed to update duplicate count", err)
	}
	return row.toEntity(), nil
}

func (r *gormReportRepository) ListByOwner(ctx context.Context, ownerID string) ([]*entity.Report, error) {
	return r.list(r.db.WithContext(ctx).Where("owner_id = ?", ownerID))
}

func (r *gormReportRepository) ListAll(ctx context.Context, limit int) ([]*entity.Report, error) {
	query := r.db.WithContext(ctx)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.list(query)
}

func (r *gormReportRepository) CountByStatus(ctx context.Context, status entity.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&reportRow{}).Where("status = ?", string(status)).Count(&count).Error
	if err != nil {
		return 0, errors.Dependency("Failed to count reports", err)
	}
	return count, nil
}

func (r *gormReportRepository) CountByOwnerAndStatus(ctx context.Context, ownerID string, status entity.ReportStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&reportRow{}).
		Where("owner_id = ? AND status = ?", ownerID, string(status)).
		Count(&count).Error
	if err != nil {
		return 0, errors.Dependency("Failed to count reports", err)
	}
	return count, nil
}

func (r *gormReportRepository) list(query *gorm.DB) ([]*entity.Report, error) {
	var rows []reportRow
	if err := query.Order("submitted_at DESC").Find(&rows).Error; err != nil {
		return nil, errors.Dependency("Failed to list reports", err)
	}
	reports := make([]*entity.Report, 0, len(rows))
	for i := range rows {
		reports = append(reports, rows[i].toEntity())
	}
	return reports, nil
}
