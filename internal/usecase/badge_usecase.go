package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

const (
	badgeTitleMaxTokens = 20
	badgeTitleMinLength = 3

	// BadgeStoreTimeout bounds the writes that follow title generation.
	BadgeStoreTimeout = 10 * time.Second
)

type BadgeUseCase struct {
	badgeRepo   repository.BadgeRepository
	reportRepo  repository.ReportRepository
	profileRepo repository.ProfileRepository
	generator   service.TextGenerator
	notifier    Notifier
	aiTimeout   time.Duration
	now         func() time.Time
	log         logger.Logger

	createMu sync.Mutex
}

func NewBadgeUseCase(
	badgeRepo repository.BadgeRepository,
	reportRepo repository.ReportRepository,
	profileRepo repository.ProfileRepository,
	generator service.TextGenerator,
	notifier Notifier,
	aiTimeout time.Duration,
	log logger.Logger,
) *BadgeUseCase {
	return &BadgeUseCase{
		badgeRepo:   badgeRepo,
		reportRepo:  reportRepo,
		profileRepo: profileRepo,
		generator:   generator,
		notifier:    notifier,
		aiTimeout:   aiTimeout,
		now:         time.Now,
		log:         log,
	}
}

// AwardBadge issues the badge for a freshly resolved report. Every failure is
// logged here; callers run it as a side effect.
func (uc *BadgeUseCase) AwardBadge(ctx context.Context, report *entity.Report) {
	if _, err := uc.award(ctx, report); err != nil {
		uc.log.Error("failed to award badge", "report_id", report.ID, "error", err)
	}
}

func (uc *BadgeUseCase) award(ctx context.Context, report *entity.Report) (*entity.Badge, error) {
	exists, err := uc.badgeRepo.ExistsForReport(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		uc.log.Info("badge already issued for report", "report_id", report.ID)
		return nil, nil
	}

	badge := &entity.Badge{
		ID:          uuid.New().String(),
		OwnerID:     report.OwnerID,
		ReportID:    report.ID,
		Title:       uc.GenerateTitle(ctx, report),
		Description: fmt.Sprintf("Awarded for reporting a %s issue that has now been resolved. Thank you for helping your community.", report.IssueType),
		CreatedAt:   uc.now(),
	}

	// Title generation may have used up ctx; the badge is persisted regardless.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), BadgeStoreTimeout)
	defer cancel()

	// Re-check under the lock: a second resolution may have raced us through
	// title generation.
	uc.createMu.Lock()
	exists, err = uc.badgeRepo.ExistsForReport(storeCtx, report.ID)
	if err == nil && !exists {
		err = uc.badgeRepo.Create(storeCtx, badge)
	}
	uc.createMu.Unlock()
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	content := fmt.Sprintf("Your %s report was resolved and you earned the badge \"%s\"!", report.IssueType, badge.Title)
	if _, err := uc.notifier.Notify(storeCtx, report.OwnerID, stringPtr(report.ID), content, entity.KindBadgeEarned); err != nil {
		uc.log.Warn("failed to notify badge owner", "badge_id", badge.ID, "error", err)
	}

	uc.log.Info("badge awarded", "badge_id", badge.ID, "report_id", report.ID, "title", badge.Title)
	return badge, nil
}

// GenerateTitle asks the text generator for a short heroic title and falls
// back to "<IssueType> Hero" when the answer is missing, late or too short.
func (uc *BadgeUseCase) GenerateTitle(ctx context.Context, report *entity.Report) string {
	if uc.generator == nil {
		return FallbackBadgeTitle(report.IssueType)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.aiTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"A citizen reported a civic issue that has now been resolved.\n"+
			"Issue type: %s\nDescription: %s\n"+
			"Create a creative, heroic badge title of at most 5 words inspired by the issue or its location. "+
			"Reply with the title only.",
		report.IssueType, report.Description,
	)

	raw, err := uc.generator.Generate(ctx, prompt, badgeTitleMaxTokens)
	if err != nil {
		uc.log.Warn("badge title generation failed, using fallback", "report_id", report.ID, "error", err)
		return FallbackBadgeTitle(report.IssueType)
	}

	title := cleanGeneratedLine(raw)
	if utf8.RuneCountInString(title) < badgeTitleMinLength {
		return FallbackBadgeTitle(report.IssueType)
	}
	return title
}

func (uc *BadgeUseCase) ListBadges(ctx context.Context, userID string) ([]*entity.Badge, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errors.Validation("User ID is required")
	}
	return uc.badgeRepo.ListByOwner(ctx, userID)
}

// GetAchievements reports the resolved count and the certificate ladder.
func (uc *BadgeUseCase) GetAchievements(ctx context.Context, userID string) (*entity.AchievementSummary, error) {
	resolved, err := uc.reportRepo.CountByOwnerAndStatus(ctx, userID, entity.StatusResolved)
	if err != nil {
		return nil, err
	}
	badges, err := uc.badgeRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &entity.AchievementSummary{
		ResolvedCount: resolved,
		BadgeCount:    len(badges),
		Milestones:    make([]entity.MilestoneStatus, 0, len(entity.Milestones)),
	}

	if profile, err := uc.profileRepo.GetByID(ctx, userID); err == nil {
		summary.User = profile
	} else if !errors.Is(err, errors.CodeNotFound) {
		return nil, err
	}

	for _, m := range entity.Milestones {
		remaining := m.Level - int(resolved)
		if remaining < 0 {
			remaining = 0
		}
		summary.Milestones = append(summary.Milestones, entity.MilestoneStatus{
			Milestone: m,
			Unlocked:  remaining == 0,
			Remaining: remaining,
		})
	}
	return summary, nil
}

// FallbackBadgeTitle capitalises the first letter of the issue type.
func FallbackBadgeTitle(issueType string) string {
	issueType = strings.TrimSpace(issueType)
	if issueType == "" {
		return "Community Hero"
	}
	r, size := utf8.DecodeRuneInString(issueType)
	return string(unicode.ToUpper(r)) + issueType[size:] + " Hero"
}

// cleanGeneratedLine keeps the first non-empty line and strips list markers,
// markdown emphasis and surrounding quotes.
func cleanGeneratedLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		line = listMarker.ReplaceAllString(strings.TrimSpace(line), "")
		line = strings.Trim(line, " \t\"'`*“”‘’")
		if line != "" {
			return line
		}
	}
	return ""
}
