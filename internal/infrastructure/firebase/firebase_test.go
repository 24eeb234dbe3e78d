package firebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/domain/service"
)

func TestFCMTopic(t *testing.T) {
	assert.Equal(t, "notifications-abc123", FCMTopic("notifications:abc123"))
	assert.Equal(t, "reports", FCMTopic("reports"))
}

func TestBuildMessage(t *testing.T) {
	msg, err := buildMessage(service.Event{
		Topic:   "notifications:u1",
		Name:    service.EventNewNotification,
		Payload: map[string]string{"content": "Your report is resolved"},
	})
	require.NoError(t, err)
	assert.Equal(t, "notifications-u1", msg.Topic)
	assert.Equal(t, service.EventNewNotification, msg.Data["event"])
	assert.JSONEq(t, `{"content":"Your report is resolved"}`, msg.Data["payload"])
}

func TestIdentityFromClaims(t *testing.T) {
	id := identityFromClaims("uid-1", map[string]interface{}{
		"email":        "a@example.com",
		"phone_number": "+15550100",
	})
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "a@example.com", id.Email)
	assert.Equal(t, "+15550100", id.Phone)

	bare := identityFromClaims("uid-2", nil)
	assert.Empty(t, bare.Email)
}
