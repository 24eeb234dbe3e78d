package usecase

import (
	"context"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/logger"
)

type ReportQueryUseCase struct {
	reportRepo  repository.ReportRepository
	profileRepo repository.ProfileRepository
	log         logger.Logger
}

func NewReportQueryUseCase(reportRepo repository.ReportRepository, profileRepo repository.ProfileRepository, log logger.Logger) *ReportQueryUseCase {
	return &ReportQueryUseCase{reportRepo: reportRepo, profileRepo: profileRepo, log: log}
}

func (uc *ReportQueryUseCase) ListOwn(ctx context.Context, ownerID string) ([]*entity.Report, error) {
	return uc.reportRepo.ListByOwner(ctx, ownerID)
}

// ListAll returns every report, newest first, with the submitter's email
// filled in where a profile exists. It is not truncated.
func (uc *ReportQueryUseCase) ListAll(ctx context.Context) ([]*entity.Report, error) {
	reports, err := uc.reportRepo.ListAll(ctx, 0)
	if err != nil {
		return nil, err
	}

	profiles, err := uc.profileRepo.ListAll(ctx)
	if err != nil {
		uc.log.Warn("failed to load profiles for report listing", "error", err)
		return reports, nil
	}

	emails := make(map[string]string, len(profiles))
	for _, p := range profiles {
		emails[p.ID] = p.Email
	}
	for _, r := range reports {
		r.OwnerEmail = emails[r.OwnerID]
	}
	return reports, nil
}

func (uc *ReportQueryUseCase) ListPublic(ctx context.Context, limit int) ([]*entity.Report, error) {
	return uc.reportRepo.ListAll(ctx, limit)
}
