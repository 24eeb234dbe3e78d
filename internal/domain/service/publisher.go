package service

import (
	"context"
)

const (
	EventNewNotification = "new_notification"
	EventNewReport       = "new_report"

	TopicReports = "reports"
)

// NotificationTopic is the personal real-time channel of a user.
func NotificationTopic(userID string) string {
	return "notifications:" + userID
}

// Event is one message on a pub/sub topic. Payload is the persisted row.
type Event struct {
	Topic   string      `json:"topic"`
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Publisher delivers events at least once to a topic's subscribers.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
