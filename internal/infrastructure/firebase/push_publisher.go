package firebase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"firebase.google.com/go/v4/messaging"

	"civiq/internal/domain/service"
)

var fcmTopicUnsafe = regexp.MustCompile(`[^a-zA-Z0-9\-_.~%]`)

// FCMTopic maps a channel name onto the FCM topic alphabet.
func FCMTopic(topic string) string {
	return fcmTopicUnsafe.ReplaceAllString(topic, "-")
}

// PushPublisher forwards pub/sub events to mobile devices subscribed to the
// matching FCM topic. Messages are data-only; the app renders them.
type PushPublisher struct {
	client *messaging.Client
}

func NewPushPublisher(client *messaging.Client) *PushPublisher {
	return &PushPublisher{client: client}
}

func (p *PushPublisher) Publish(ctx context.Context, event service.Event) error {
	message, err := buildMessage(event)
	if err != nil {
		return err
	}
	if _, err := p.client.Send(ctx, message); err != nil {
		return fmt.Errorf("fcm send to %s: %w", message.Topic, err)
	}
	return nil
}

func buildMessage(event service.Event) (*messaging.Message, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("fcm: marshal payload: %w", err)
	}
	return &messaging.Message{
		Topic: FCMTopic(event.Topic),
		Data: map[string]string{
			"event":   event.Name,
			"topic":   event.Topic,
			"payload": string(payload),
		},
		Android: &messaging.AndroidConfig{Priority: "high"},
	}, nil
}
