package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiq/internal/domain/entity"
	"civiq/pkg/errors"
	"civiq/pkg/logger"
)

func seedReport(t *testing.T, env *testEnv, ownerID string) *entity.Report {
	t.Helper()
	report := &entity.Report{
		ID:             fmt.Sprintf("report-%d", env.reports.count()+1),
		OwnerID:        ownerID,
		IssueType:      "pothole",
		Description:    "Deep pothole on Elm street",
		Status:         entity.StatusSubmitted,
		SubmittedAt:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		DuplicateCount: 1,
	}
	require.NoError(t, env.reports.Create(context.Background(), report))
	return report
}

// steppingClock returns a later instant on every call.
func steppingClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
}

func TestSetStatus_Transitions(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, citizenID)
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	env.lifecycle.WithClock(steppingClock(start))

	updated, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusInProgress, adminID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInProgress, updated.Status)
	require.NotNil(t, updated.InProgressAt)
	assert.Nil(t, updated.ResolvedAt)

	updated, err = env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.InProgressAt.Before(*updated.ResolvedAt))

	updated, err = env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusSubmitted, adminID)
	require.NoError(t, err)
	assert.Nil(t, updated.InProgressAt)
	assert.Nil(t, updated.ResolvedAt)
}

func TestSetStatus_SkipAheadBackfillsInProgress(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, citizenID)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	env.lifecycle.WithClock(func() time.Time { return fixed })

	updated, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)

	stored, err := env.reports.GetByID(context.Background(), updated.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InProgressAt)
	require.NotNil(t, stored.ResolvedAt)
	assert.Equal(t, fixed, *stored.InProgressAt)
	assert.Equal(t, fixed, *stored.ResolvedAt)
}

func TestSetStatus_InvariantHoldsForRandomSequences(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, citizenID)
	env.lifecycle.WithClock(steppingClock(time.Now()))

	statuses := []entity.ReportStatus{entity.StatusSubmitted, entity.StatusInProgress, entity.StatusResolved}
	rng := rand.New(rand.NewSource(7))

	resolvedEntries := 0
	previous := entity.StatusSubmitted
	for i := 0; i < 60; i++ {
		target := statuses[rng.Intn(len(statuses))]
		_, err := env.lifecycle.SetStatus(context.Background(), report.ID, target, adminID)
		require.NoError(t, err)

		stored, err := env.reports.GetByID(context.Background(), report.ID)
		require.NoError(t, err)
		assert.True(t, stored.TimestampsConsistent(), "step %d: %s", i, target)

		if previous != entity.StatusResolved && target == entity.StatusResolved {
			resolvedEntries++
		}
		previous = target
	}
	env.tasks.Wait()

	// At most one badge per report however often it is re-resolved.
	if resolvedEntries > 0 {
		assert.Len(t, env.badges.forReport(report.ID), 1)
	}
}

func TestSetStatus_Errors(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, citizenID)

	_, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, citizenID)
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, "stranger")
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = env.lifecycle.SetStatus(context.Background(), "missing", entity.StatusResolved, adminID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	_, err = env.lifecycle.SetStatus(context.Background(), report.ID, entity.ReportStatus("closed"), adminID)
	assert.True(t, errors.Is(err, errors.CodeValidation))

	stored, _ := env.reports.GetByID(context.Background(), report.ID)
	assert.Equal(t, entity.StatusSubmitted, stored.Status)
}

func TestSetStatus_NoSelfNotification(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, adminID)

	_, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusInProgress, adminID)
	require.NoError(t, err)

	assert.Empty(t, env.notifications.byKind(adminID, entity.KindStatusUpdate))
}

func TestSetStatus_BadgeWithFailingGenerator(t *testing.T) {
	env := newTestEnv(t)
	env.generator.err = fmt.Errorf("model overloaded")
	report := seedReport(t, env, citizenID)

	_, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	env.tasks.Wait()

	badges := env.badges.forReport(report.ID)
	require.Len(t, badges, 1)
	assert.Equal(t, "Pothole Hero", badges[0].Title)
	assert.Equal(t, citizenID, badges[0].OwnerID)
	assert.Len(t, env.notifications.byKind(citizenID, entity.KindBadgeEarned), 1)
}

// The task budget equals the AI timeout, so title generation exhausts the
// task context before the badge is written.
func TestSetStatus_BadgeSurvivesAITimeout(t *testing.T) {
	env := newTestEnv(t)
	const budget = 50 * time.Millisecond
	badges := NewBadgeUseCase(env.badges, env.reports, env.profiles, blockingGenerator{}, env.notifier, budget, logger.Nop{})
	lifecycle := NewLifecycleUseCase(env.reports, env.profiles, env.notifier, badges, env.tasks, budget, logger.Nop{})
	report := seedReport(t, env, citizenID)

	_, err := lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	env.tasks.Wait()

	awarded := env.badges.forReport(report.ID)
	require.Len(t, awarded, 1)
	assert.Equal(t, "Pothole Hero", awarded[0].Title)
	assert.Len(t, env.notifications.byKind(citizenID, entity.KindBadgeEarned), 1)
}

func TestSetStatus_ResolvedAgainDoesNotAward(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, citizenID)

	_, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	_, err = env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	env.tasks.Wait()

	assert.Len(t, env.badges.forReport(report.ID), 1)
	assert.Equal(t, 1, env.generator.calls)
}

// Scenario: admin moves a report through in_progress to resolved.
func TestScenario_ResolveLifecycle(t *testing.T) {
	env := newTestEnv(t)
	report := seedReport(t, env, citizenID)
	env.lifecycle.WithClock(steppingClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)))

	_, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusInProgress, adminID)
	require.NoError(t, err)
	assert.Len(t, env.notifications.byKind(citizenID, entity.KindStatusUpdate), 1)

	resolved, err := env.lifecycle.SetStatus(context.Background(), report.ID, entity.StatusResolved, adminID)
	require.NoError(t, err)
	env.tasks.Wait()

	assert.True(t, resolved.InProgressAt.Before(*resolved.ResolvedAt))
	updates := env.notifications.byKind(citizenID, entity.KindStatusUpdate)
	require.Len(t, updates, 2)
	assert.Contains(t, updates[1].Content, "Resolved")

	badges := env.badges.forReport(report.ID)
	require.Len(t, badges, 1)
	assert.Equal(t, "Pothole Slayer", badges[0].Title)
}
