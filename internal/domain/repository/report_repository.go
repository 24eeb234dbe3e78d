package repository

import (
	"context"

	"civiq/internal/domain/entity"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	// UpdateStatus persists Status, InProgressAt and ResolvedAt only.
	UpdateStatus(ctx context.Context, report *entity.Report) error
	// IncrementDuplicateCount adds one to DuplicateCount and returns the updated report.
	IncrementDuplicateCount(ctx context.Context, id string) (*entity.Report, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Report, error)
	ListAll(ctx context.Context, limit int) ([]*entity.Report, error)
	CountByStatus(ctx context.Context, status entity.ReportStatus) (int64, error)
	CountByOwnerAndStatus(ctx context.Context, ownerID string, status entity.ReportStatus) (int64, error)
}
