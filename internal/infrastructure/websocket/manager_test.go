package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/domain/service"
)

func TestPublishReachesOnlyTopicSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	alice := NewClient("alice", nil, service.NotificationTopic("alice"))
	admin := NewClient("admin", nil, service.NotificationTopic("admin"), service.TopicReports)
	require.True(t, m.Add(alice))
	require.True(t, m.Add(admin))

	require.Eventually(t, func() bool {
		return m.SubscriberCount(service.TopicReports) == 1 &&
			m.SubscriberCount(service.NotificationTopic("alice")) == 1
	}, time.Second, 10*time.Millisecond)

	err := m.Publish(ctx, service.Event{
		Topic:   service.NotificationTopic("alice"),
		Name:    service.EventNewNotification,
		Payload: map[string]string{"content": "hi"},
	})
	require.NoError(t, err)

	select {
	case raw := <-alice.Send:
		var msg wireMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, service.EventNewNotification, msg.Type)
		assert.Equal(t, "notifications:alice", msg.Topic)
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the event")
	}

	assert.Len(t, admin.Send, 0)
}

func TestUnregisterClosesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	c := NewClient("bob", nil, service.NotificationTopic("bob"))
	require.True(t, m.Add(c))
	m.Drop(c)

	require.Eventually(t, func() bool {
		return m.SubscriberCount(service.NotificationTopic("bob")) == 0
	}, time.Second, 10*time.Millisecond)

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("client was not closed")
	}
	assert.False(t, c.enqueue([]byte("late")))
}

func fillBuffer(t *testing.T, m *Manager, topic string) {
	t.Helper()
	for i := 0; i <= sendBufferSize; i++ {
		require.NoError(t, m.Publish(context.Background(), service.Event{Topic: topic, Name: "x"}))
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	m := NewManager()
	c := NewClient("slow", nil, "t")
	m.add(c)

	fillBuffer(t, m, "t")

	assert.Equal(t, 0, m.SubscriberCount("t"))
	select {
	case <-c.Done():
	default:
		t.Fatal("dropped client should be closed")
	}
	assert.False(t, c.enqueue([]byte(`{"type":"pong"}`)))
}

// A ping arriving after the client was dropped must not write to a dead
// client or crash the read loop.
func TestReadPumpAfterSlowClientDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	upgrader := websocket.Upgrader{}
	readDone := make(chan struct{})
	registered := make(chan *Client, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient("peer", conn, "t")
		if !m.Add(c) {
			return
		}
		registered <- c
		go func() {
			c.ReadPump(m)
			close(readDone)
		}()
	}))
	defer srv.Close()

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer peer.Close()

	c := <-registered
	require.Eventually(t, func() bool { return m.SubscriberCount("t") == 1 }, time.Second, 10*time.Millisecond)

	fillBuffer(t, m, "t")
	<-c.Done()

	require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	peer.Close()

	select {
	case <-readDone:
	case <-time.After(2 * time.Second):
		t.Fatal("read pump did not exit")
	}
}

func TestStoppedManagerReleasesClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager()
	m.Start(ctx)

	c := NewClient("carol", nil, "t")
	require.True(t, m.Add(c))
	cancel()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("open client was not closed on shutdown")
	}

	dropped := make(chan struct{})
	go func() {
		m.Drop(c)
		close(dropped)
	}()
	select {
	case <-dropped:
	case <-time.After(time.Second):
		t.Fatal("Drop blocked after shutdown")
	}

	late := NewClient("dave", nil, "t")
	assert.False(t, m.Add(late))
	assert.Equal(t, 0, m.SubscriberCount("t"))
}

func TestHandleClientMessage(t *testing.T) {
	reply := handleClientMessage([]byte(`{"type":"ping"}`))
	require.NotNil(t, reply)
	assert.Contains(t, string(reply), `"pong"`)

	assert.Nil(t, handleClientMessage([]byte(`{"type":"other"}`)))
	assert.Nil(t, handleClientMessage([]byte(`not json`)))
}
