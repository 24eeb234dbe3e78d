package pubsub

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/domain/service"
)

type recordingPublisher struct {
	events []service.Event
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, e service.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanoutDeliversToAllDespiteFailure(t *testing.T) {
	broken := &recordingPublisher{err: errors.New("broker down")}
	ws := &recordingPublisher{}

	f := NewFanout().Add("amqp", broken).Add("websocket", ws)
	err := f.Publish(context.Background(), service.Event{Topic: service.TopicReports, Name: service.EventNewReport})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "amqp: broker down")
	assert.Len(t, broken.events, 1)
	assert.Len(t, ws.events, 1)
	assert.Equal(t, []string{"amqp", "websocket"}, f.Transports())
}

func TestFanoutEmpty(t *testing.T) {
	assert.NoError(t, NewFanout().Publish(context.Background(), service.Event{Topic: "x"}))
}
