package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"civiq/internal/domain/service"
	"civiq/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096
	sendBufferSize = 64
)

// Client is one WebSocket connection subscribed to a fixed set of topics.
// Send is never closed; done signals the pumps to stop.
type Client struct {
	UserID string
	Topics []string
	Conn   *websocket.Conn
	Send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(userID string, conn *websocket.Conn, topics ...string) *Client {
	return &Client{
		UserID: userID,
		Topics: topics,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

// Done is closed once the client has been dropped or unregistered.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// enqueue queues a frame without blocking. It reports false when the
// client is gone or its buffer is full.
func (c *Client) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- message:
		return true
	default:
		return false
	}
}

// Manager routes published events to the clients subscribed to their topic.
type Manager struct {
	topics     map[string]map[*Client]struct{}
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	stopped  chan struct{}
	stopOnce sync.Once
}

func NewManager() *Manager {
	return &Manager{
		topics:     make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stopped:    make(chan struct{}),
	}
}

// Start runs the registration loop until ctx is done, then drops every
// remaining client.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.add(client)
				logger.Debug("websocket client registered: user=%s topics=%v", client.UserID, client.Topics)

			case client := <-m.Unregister:
				m.remove(client)
				logger.Debug("websocket client unregistered: user=%s", client.UserID)

			case <-ctx.Done():
				m.stop()
				return
			}
		}
	}()
}

func (m *Manager) stop() {
	m.stopOnce.Do(func() {
		close(m.stopped)
		m.mutex.Lock()
		defer m.mutex.Unlock()
		for topic, subs := range m.topics {
			for client := range subs {
				client.close()
			}
			delete(m.topics, topic)
		}
	})
}

// Add hands the client to the registration loop. It returns false once the
// manager has stopped.
func (m *Manager) Add(client *Client) bool {
	select {
	case m.Register <- client:
		return true
	case <-m.stopped:
		client.close()
		return false
	}
}

// Drop hands the client to the registration loop for removal, or closes it
// directly when the loop is no longer running.
func (m *Manager) Drop(client *Client) {
	select {
	case m.Unregister <- client:
	case <-m.stopped:
		client.close()
	}
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, topic := range client.Topics {
		subs, ok := m.topics[topic]
		if !ok {
			subs = make(map[*Client]struct{})
			m.topics[topic] = subs
		}
		subs[client] = struct{}{}
	}
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, topic := range client.Topics {
		subs, ok := m.topics[topic]
		if !ok {
			continue
		}
		delete(subs, client)
		if len(subs) == 0 {
			delete(m.topics, topic)
		}
	}
	client.close()
}

// SubscriberCount is the number of live connections on a topic.
func (m *Manager) SubscriberCount(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.topics[topic])
}

type wireMessage struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic"`
	Data      interface{} `json:"data"`
	Timestamp string      `json:"timestamp"`
}

// Publish delivers the event to every local subscriber. Slow clients whose
// buffer is full are dropped; they resync through the REST listing.
func (m *Manager) Publish(ctx context.Context, event service.Event) error {
	data, err := json.Marshal(wireMessage{
		Type:      event.Name,
		Topic:     event.Topic,
		Data:      event.Payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	var slow []*Client
	m.mutex.RLock()
	for client := range m.topics[event.Topic] {
		if !client.enqueue(data) {
			slow = append(slow, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range slow {
		logger.Warn("dropping slow websocket client: user=%s", client.UserID)
		m.remove(client)
	}
	return nil
}

// ReadPump consumes client frames; only pings are understood.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Drop(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error: user=%s err=%v", c.UserID, err)
			}
			return
		}

		if reply := handleClientMessage(message); reply != nil {
			c.enqueue(reply)
		}
	}
}

// WritePump flushes queued messages and keeps the connection alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("websocket write error: user=%s err=%v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
