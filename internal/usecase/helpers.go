package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/repository"
	"civiq/pkg/errors"
)

// Notifier is the slice of NotificationUseCase other use cases depend on.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, reportID *string, content string, kind entity.NotificationKind) (*entity.Notification, error)
}

func requireAdmin(ctx context.Context, profiles repository.ProfileRepository, userID string) (*entity.Profile, error) {
	profile, err := profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.Forbidden("Admin privileges required", nil)
		}
		return nil, err
	}
	if !profile.IsAdmin() {
		return nil, errors.Forbidden("Admin privileges required", nil)
	}
	return profile, nil
}

func statusLabel(status entity.ReportStatus) string {
	switch status {
	case entity.StatusSubmitted:
		return "Submitted"
	case entity.StatusInProgress:
		return "In Progress"
	case entity.StatusResolved:
		return "Resolved"
	}
	return string(status)
}

func truncateText(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "..."
}

func stringPtr(s string) *string {
	return &s
}
