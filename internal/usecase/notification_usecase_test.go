package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/domain/entity"
	"civiq/internal/domain/service"
	"civiq/pkg/errors"
)

func TestNotify_PersistsThenPublishes(t *testing.T) {
	env := newTestEnv(t)

	n, err := env.notifier.Notify(context.Background(), citizenID, stringPtr("r1"), "hello", entity.KindAdminMessage)
	require.NoError(t, err)
	assert.False(t, n.IsRead)

	require.Len(t, env.publisher.events, 1)
	event := env.publisher.events[0]
	assert.Equal(t, service.NotificationTopic(citizenID), event.Topic)
	assert.Equal(t, service.EventNewNotification, event.Name)
	assert.Equal(t, n, event.Payload)
}

func TestNotify_PersistFailureDoesNotPublish(t *testing.T) {
	env := newTestEnv(t)
	env.notifications.failFor[citizenID] = true

	_, err := env.notifier.Notify(context.Background(), citizenID, nil, "hello", entity.KindBroadcast)
	assert.True(t, errors.Is(err, errors.CodeDependency))
	assert.Empty(t, env.publisher.events)
}

func TestNotify_PublishFailureIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = fmt.Errorf("socket closed")

	n, err := env.notifier.Notify(context.Background(), citizenID, nil, "hello", entity.KindBroadcast)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Len(t, env.notifications.all(), 1)
}

func TestNotifyAll_ExcludesBroadcaster(t *testing.T) {
	env := newTestEnv(t)
	for i := 2; i <= 5; i++ {
		_ = env.profiles.Upsert(context.Background(), &entity.Profile{ID: fmt.Sprintf("citizen-%d", i), Role: entity.RoleCitizen})
	}
	env.notifications.failFor["citizen-3"] = true

	result, err := env.notifier.NotifyAll(context.Background(), adminID, "Water supply interrupted tomorrow")
	require.NoError(t, err)

	assert.Equal(t, 4, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, env.notifications.byKind(adminID, entity.KindBroadcast))
	for _, id := range []string{"citizen-1", "citizen-2", "citizen-4", "citizen-5"} {
		got := env.notifications.byKind(id, entity.KindBroadcast)
		require.Len(t, got, 1, id)
		assert.Nil(t, got[0].ReportID)
	}
}

func TestNotifyAll_RequiresContent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.notifier.NotifyAll(context.Background(), adminID, "  ")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		_, err := env.notifier.Notify(context.Background(), citizenID, nil, "msg", entity.KindBroadcast)
		require.NoError(t, err)
	}
	_, err := env.notifier.Notify(context.Background(), adminID, nil, "msg", entity.KindBroadcast)
	require.NoError(t, err)

	changed, err := env.notifier.MarkAllRead(context.Background(), citizenID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, changed)

	changed, err = env.notifier.MarkAllRead(context.Background(), citizenID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, changed)

	summary, err := env.notifier.GetSummary(context.Background(), adminID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.UnreadCount)
}

func TestGetSummary(t *testing.T) {
	env := newTestEnv(t)
	seedReport(t, env, citizenID)
	resolved := seedReport(t, env, citizenID)
	_, err := env.lifecycle.SetStatus(context.Background(), resolved.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	env.tasks.Wait()

	citizen, err := env.notifier.GetSummary(context.Background(), citizenID, entity.RoleCitizen)
	require.NoError(t, err)
	assert.EqualValues(t, 2, citizen.UnreadCount) // status update + badge
	assert.Nil(t, citizen.OpenReportCount)

	admin, err := env.notifier.GetSummary(context.Background(), adminID, entity.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 0, admin.UnreadCount)
	require.NotNil(t, admin.OpenReportCount)
	assert.EqualValues(t, 1, *admin.OpenReportCount)
}

func TestSendAdminMessage(t *testing.T) {
	env := newTestEnv(t)

	n, err := env.notifier.SendAdminMessage(context.Background(), adminID, citizenID, stringPtr("r-9"), "We are on it")
	require.NoError(t, err)
	assert.Equal(t, entity.KindAdminMessage, n.Kind)
	assert.Equal(t, "r-9", *n.ReportID)

	_, err = env.notifier.SendAdminMessage(context.Background(), citizenID, adminID, nil, "hi")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = env.notifier.SendAdminMessage(context.Background(), adminID, "ghost", nil, "hi")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = env.notifier.SendAdminMessage(context.Background(), adminID, citizenID, nil, "")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestListForUser_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	for _, content := range []string{"first", "second", "third"} {
		_, err := env.notifier.Notify(context.Background(), citizenID, nil, content, entity.KindBroadcast)
		require.NoError(t, err)
	}

	list, err := env.notifier.ListForUser(context.Background(), citizenID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
}
