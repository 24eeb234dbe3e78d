package websocket

import (
	"encoding/json"
	"time"
)

const (
	MessageTypePing = "ping"
	MessageTypePong = "pong"
)

type clientMessage struct {
	Type string `json:"type"`
}

// handleClientMessage answers application-level pings. Anything else is ignored.
func handleClientMessage(raw []byte) []byte {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	if msg.Type != MessageTypePing {
		return nil
	}
	reply, _ := json.Marshal(wireMessage{
		Type:      MessageTypePong,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return reply
}
