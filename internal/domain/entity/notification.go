package entity

import (
	"time"
)

type NotificationKind string

const (
	KindNewReport    NotificationKind = "new_report"
	KindStatusUpdate NotificationKind = "status_update"
	KindAdminMessage NotificationKind = "admin_message"
	KindBroadcast    NotificationKind = "broadcast"
	KindBadgeEarned  NotificationKind = "badge_earned"
)

type Notification struct {
	ID          string           `json:"id" firestore:"id"`
	RecipientID string           `json:"recipient_id" firestore:"recipientId"`
	ReportID    *string          `json:"report_id" firestore:"reportId"`
	Content     string           `json:"content" firestore:"content"`
	Kind        NotificationKind `json:"kind" firestore:"kind"`
	IsRead      bool             `json:"is_read" firestore:"isRead"`
	CreatedAt   time.Time        `json:"created_at" firestore:"createdAt"`
}

// NotificationSummary is returned by the bell counter endpoint.
// OpenReportCount is only populated for admins.
type NotificationSummary struct {
	UnreadCount     int64  `json:"unreadCount"`
	OpenReportCount *int64 `json:"openReportCount,omitempty"`
}

// FanoutResult counts per-recipient outcomes of a multi-recipient send.
type FanoutResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}
