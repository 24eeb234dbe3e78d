package usecase

import (
	"context"
	"fmt"
	"time"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

type BadgeAwarder interface {
	AwardBadge(ctx context.Context, report *entity.Report)
}

type LifecycleUseCase struct {
	reportRepo   repository.ReportRepository
	profileRepo  repository.ProfileRepository
	notifier     Notifier
	badges       BadgeAwarder
	tasks        *TaskRunner
	badgeTimeout time.Duration
	now          func() time.Time
	log          logger.Logger
}

func NewLifecycleUseCase(
	reportRepo repository.ReportRepository,
	profileRepo repository.ProfileRepository,
	notifier Notifier,
	badges BadgeAwarder,
	tasks *TaskRunner,
	badgeTimeout time.Duration,
	log logger.Logger,
) *LifecycleUseCase {
	return &LifecycleUseCase{
		reportRepo:   reportRepo,
		profileRepo:  profileRepo,
		notifier:     notifier,
		badges:       badges,
		tasks:        tasks,
		badgeTimeout: badgeTimeout,
		now:          time.Now,
		log:          log,
	}
}

// WithClock replaces the time source.
func (uc *LifecycleUseCase) WithClock(now func() time.Time) *LifecycleUseCase {
	uc.now = now
	return uc
}

// SetStatus moves a report to target on behalf of an admin. Entering
// resolved from any other status awards a badge; the owner is told about the
// change unless they made it themselves.
func (uc *LifecycleUseCase) SetStatus(ctx context.Context, reportID string, target entity.ReportStatus, actingUserID string) (*entity.Report, error) {
	if !target.Valid() {
		return nil, errors.Validation(fmt.Sprintf("Invalid status %q", target))
	}
	if _, err := requireAdmin(ctx, uc.profileRepo, actingUserID); err != nil {
		return nil, err
	}

	report, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	previous := report.Status
	report.ApplyStatus(target, uc.now())

	if err := uc.reportRepo.UpdateStatus(ctx, report); err != nil {
		return nil, err
	}

	uc.log.Info("report status updated",
		"report_id", report.ID,
		"from", string(previous),
		"to", string(target),
	)

	if previous != entity.StatusResolved && target == entity.StatusResolved {
		snapshot := *report
		uc.tasks.Go(ctx, "award_badge", uc.badgeTimeout, func(ctx context.Context) error {
			uc.badges.AwardBadge(ctx, &snapshot)
			return nil
		})
	}

	if report.OwnerID != actingUserID {
		content := fmt.Sprintf("Your %s report is now %s.", report.IssueType, statusLabel(target))
		if _, err := uc.notifier.Notify(ctx, report.OwnerID, stringPtr(report.ID), content, entity.KindStatusUpdate); err != nil {
			uc.log.Warn("failed to notify report owner", "report_id", report.ID, "error", err)
		}
	}

	return report, nil
}
