package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/internal/domain/service"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

const defaultFanoutConcurrency = 8

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	profileRepo      repository.ProfileRepository
	reportRepo       repository.ReportRepository
	publisher        service.Publisher
	concurrency      int
	now              func() time.Time
	log              logger.Logger
}

func NewNotificationUseCase(
	notificationRepo repository.NotificationRepository,
	profileRepo repository.ProfileRepository,
	reportRepo repository.ReportRepository,
	publisher service.Publisher,
	log logger.Logger,
) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		profileRepo:      profileRepo,
		reportRepo:       reportRepo,
		publisher:        publisher,
		concurrency:      defaultFanoutConcurrency,
		now:              time.Now,
		log:              log,
	}
}

// Notify persists a notification and, only once that succeeded, pushes it on
// the recipient's personal topic. A failed push is logged; the stored row is
// what the client reads on its next fetch.
func (uc *NotificationUseCase) Notify(ctx context.Context, recipientID string, reportID *string, content string, kind entity.NotificationKind) (*entity.Notification, error) {
	notification := &entity.Notification{
		ID:          uuid.New().String(),
		RecipientID: recipientID,
		ReportID:    reportID,
		Content:     content,
		Kind:        kind,
		IsRead:      false,
		CreatedAt:   uc.now(),
	}

	if err := uc.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	event := service.Event{
		Topic:   service.NotificationTopic(recipientID),
		Name:    service.EventNewNotification,
		Payload: notification,
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Warn("failed to publish notification",
			"notification_id", notification.ID,
			"recipient", logger.MaskID(recipientID),
			"error", err,
		)
	}

	return notification, nil
}

// NotifyAll sends a broadcast to every profile except the broadcaster.
func (uc *NotificationUseCase) NotifyAll(ctx context.Context, broadcasterID, content string) (*entity.FanoutResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("Broadcast content is required")
	}

	profiles, err := uc.profileRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(profiles))
	for _, p := range profiles {
		if p.ID != broadcasterID {
			recipients = append(recipients, p.ID)
		}
	}

	result := uc.fanout(ctx, recipients, func(ctx context.Context, recipientID string) error {
		_, err := uc.Notify(ctx, recipientID, nil, content, entity.KindBroadcast)
		return err
	})

	uc.log.Info("broadcast delivered", "sent", result.Sent, "failed", result.Failed)
	return &result, nil
}

// NotifyAdminsOfReport sends one new_report notification per admin and
// publishes the report on the shared reports topic.
func (uc *NotificationUseCase) NotifyAdminsOfReport(ctx context.Context, report *entity.Report) (*entity.FanoutResult, error) {
	admins, err := uc.profileRepo.ListByRole(ctx, entity.RoleAdmin)
	if err != nil {
		return nil, err
	}

	recipients := make([]string, 0, len(admins))
	for _, a := range admins {
		recipients = append(recipients, a.ID)
	}

	content := fmt.Sprintf("New %s report submitted: %s", report.IssueType, truncateText(report.Description, 80))
	result := uc.fanout(ctx, recipients, func(ctx context.Context, adminID string) error {
		_, err := uc.Notify(ctx, adminID, stringPtr(report.ID), content, entity.KindNewReport)
		return err
	})

	event := service.Event{Topic: service.TopicReports, Name: service.EventNewReport, Payload: report}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.log.Warn("failed to publish new report", "report_id", report.ID, "error", err)
	}

	return &result, nil
}

// SendAdminMessage delivers a direct message from an admin to one user.
func (uc *NotificationUseCase) SendAdminMessage(ctx context.Context, adminID, recipientID string, reportID *string, content string) (*entity.Notification, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.Validation("Message content is required")
	}
	if _, err := requireAdmin(ctx, uc.profileRepo, adminID); err != nil {
		return nil, err
	}
	if _, err := uc.profileRepo.GetByID(ctx, recipientID); err != nil {
		return nil, err
	}
	if reportID != nil && *reportID == "" {
		reportID = nil
	}

	return uc.Notify(ctx, recipientID, reportID, content, entity.KindAdminMessage)
}

// MarkAllRead is idempotent; the second call changes nothing.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.MarkAllRead(ctx, userID)
}

func (uc *NotificationUseCase) GetSummary(ctx context.Context, userID, role string) (*entity.NotificationSummary, error) {
	unread, err := uc.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &entity.NotificationSummary{UnreadCount: unread}
	if role == entity.RoleAdmin {
		open, err := uc.reportRepo.CountByStatus(ctx, entity.StatusSubmitted)
		if err != nil {
			return nil, err
		}
		summary.OpenReportCount = &open
	}
	return summary, nil
}

func (uc *NotificationUseCase) ListForUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	return uc.notificationRepo.ListByRecipient(ctx, userID, limit)
}

// fanout runs send once per recipient on a bounded worker group. A failure
// for one recipient is counted and logged and never stops the rest.
func (uc *NotificationUseCase) fanout(ctx context.Context, recipients []string, send func(ctx context.Context, recipientID string) error) entity.FanoutResult {
	var sent, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(uc.concurrency)
	for _, id := range recipients {
		recipientID := id
		g.Go(func() error {
			if err := send(ctx, recipientID); err != nil {
				failed.Add(1)
				uc.log.Warn("notification delivery failed", "recipient", logger.MaskID(recipientID), "error", err)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return entity.FanoutResult{Sent: int(sent.Load()), Failed: int(failed.Load())}
}
