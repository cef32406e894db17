package editor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mujhtech/b0-console/pkg/events"
	"github.com/mujhtech/b0-console/pkg/log"
	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSaver struct {
	mu    sync.Mutex
	calls [][]models.WorkflowStep
}

func (f *fakeSaver) SaveWorkflows(_ context.Context, _ string, steps []models.WorkflowStep) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, steps)

	return nil
}

func (f *fakeSaver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

func newTestSession(saver WorkflowSaver, onReload func()) *Session {
	return NewSession(SessionConfig{
		Endpoint: models.Endpoint{
			ID:     "e-1",
			Method: "GET",
			Path:   "/users",
			Workflows: []models.WorkflowStep{
				{ActionID: "a-1", Type: models.StepTypeResponse, Status: "200"},
			},
		},
		Saver:       saver,
		SaveDelay:   20 * time.Millisecond,
		ReloadDelay: 30 * time.Millisecond,
		OnReload:    onReload,
		Logger:      log.WithModule("test"),
	})
}

func TestEditSchedulesDebouncedSave(t *testing.T) {
	saver := &fakeSaver{}
	session := newTestSession(saver, nil)

	require.NoError(t, session.Document().InsertAt(1, models.WorkflowStep{
		ActionID: "a-2", Type: models.StepTypeVariable, Name: "limit",
	}))

	assert.Eventually(t, func() bool {
		return saver.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	saver.mu.Lock()
	defer saver.mu.Unlock()
	require.Len(t, saver.calls[0], 2)
	assert.Equal(t, "a-2", saver.calls[0][0].ActionID)
}

func TestTaskLifecycleDrivesThinkingState(t *testing.T) {
	session := newTestSession(&fakeSaver{}, nil)
	ctx := context.Background()

	require.NoError(t, session.HandleTaskEvent(ctx, &events.StreamEvent{
		Type: events.TaskStartedEvent,
		Data: events.AgentData{Message: "b0 is working on your request..."},
	}))

	assert.True(t, session.Thinking())
	assert.Equal(t, "b0 is working on your request...", session.Banner())

	require.NoError(t, session.HandleTaskEvent(ctx, &events.StreamEvent{
		Type: events.TaskCompletedEvent,
	}))

	assert.False(t, session.Thinking(), "task_completed clears the thinking indicator")
	assert.Empty(t, session.Banner(), "context message cleared")
}

func TestTaskFailedSurfacesError(t *testing.T) {
	session := newTestSession(&fakeSaver{}, nil)

	require.NoError(t, session.HandleTaskEvent(context.Background(), &events.StreamEvent{
		Type: events.TaskFailedEvent,
		Data: events.AgentData{Error: "usage limit reached"},
	}))

	assert.False(t, session.Thinking())
	assert.Equal(t, "usage limit reached", session.Banner())
}

func TestTaskCompletedAppliesAgentWorkflowsWithoutWriteBack(t *testing.T) {
	saver := &fakeSaver{}
	session := newTestSession(saver, nil)

	require.NoError(t, session.HandleTaskEvent(context.Background(), &events.StreamEvent{
		Type: events.TaskCompletedEvent,
		Data: events.AgentData{
			Workflows: []*models.WorkflowStep{
				{ActionID: "g-1", Type: models.StepTypeVariable, Name: "user"},
				{ActionID: "g-2", Type: models.StepTypeResponse, Status: "201"},
			},
		},
	}))

	assert.Equal(t, []string{"g-1", "g-2"}, stepIDs(session.Document().PersistedSteps()))

	// Agent-pushed workflows are already stored server-side.
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, saver.callCount())
}

func TestShouldReloadWindowSchedulesDelayedReload(t *testing.T) {
	var reloads int32

	session := newTestSession(&fakeSaver{}, func() { atomic.AddInt32(&reloads, 1) })

	require.NoError(t, session.HandleTaskEvent(context.Background(), &events.StreamEvent{
		Type: events.TaskCompletedEvent,
		Data: events.AgentData{ShouldReloadWindow: true},
	}))

	assert.Zero(t, atomic.LoadInt32(&reloads), "reload is delayed, not immediate")

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&reloads) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestBannerPrecedence(t *testing.T) {
	session := newTestSession(&fakeSaver{}, nil)
	ctx := context.Background()

	// Thinking with a context message: the message wins.
	require.NoError(t, session.HandleTaskEvent(ctx, &events.StreamEvent{
		Type: events.TaskUpdatedEvent,
		Data: events.AgentData{Message: "generating endpoints"},
	}))
	assert.Equal(t, "generating endpoints", session.Banner())

	// Thinking without a message.
	require.NoError(t, session.HandleTaskEvent(ctx, &events.StreamEvent{
		Type: events.TaskUpdatedEvent,
	}))
	assert.Equal(t, "Thinking...", session.Banner())
}

func TestLogEventsAccumulate(t *testing.T) {
	session := newTestSession(&fakeSaver{}, nil)
	ctx := context.Background()

	require.NoError(t, session.HandleLogEvent(ctx, &events.StreamEvent{
		Type: events.LogStartedEvent,
		Data: events.AgentData{Log: "building image"},
	}))
	require.NoError(t, session.HandleLogEvent(ctx, &events.StreamEvent{
		Type: events.LogUpdatedEvent,
		Data: events.AgentData{Message: "deploying"},
	}))
	require.NoError(t, session.HandleLogEvent(ctx, &events.StreamEvent{
		Type: events.LogUpdatedEvent,
	}))

	assert.Equal(t, []string{"building image", "deploying"}, session.Logs())
}

func TestAgentPushAndExternalEditDoNotRace(t *testing.T) {
	saver := &fakeSaver{}
	session := newTestSession(saver, nil)
	ctx := context.Background()

	agentPush := &events.StreamEvent{
		Type: events.TaskCompletedEvent,
		Data: events.AgentData{
			Workflows: []*models.WorkflowStep{
				{ActionID: "g-1", Type: models.StepTypeVariable, Name: "user"},
				{ActionID: "g-2", Type: models.StepTypeResponse, Status: "200"},
			},
		},
	}

	externalEdit := []models.WorkflowStep{
		{ActionID: "d-1", Type: models.StepTypeIf, Condition: "age >= 18"},
		{ActionID: "d-2", Type: models.StepTypeVariable, Name: "limit"},
		{ActionID: "d-3", Type: models.StepTypeResponse, Status: "201"},
	}

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(2)

		// The bus goroutine applying agent-regenerated workflows.
		go func() {
			defer wg.Done()

			_ = session.HandleTaskEvent(ctx, agentPush)
		}()

		// The draft watcher applying an external edit.
		go func() {
			defer wg.Done()

			session.Document().ReplaceAll(externalEdit)
		}()
	}

	wg.Wait()

	// Whichever writer landed last, the document is a coherent sequence.
	persisted := session.Document().PersistedSteps()
	ids := stepIDs(persisted)
	assert.Contains(t, [][]string{{"g-1", "g-2"}, {"d-1", "d-2", "d-3"}}, ids)

	steps := session.Document().Steps()
	assert.Equal(t, models.StepTypeRequest, steps[0].Type)

	session.Close(ctx)
}

func TestDragCommitFlowsIntoSaver(t *testing.T) {
	saver := &fakeSaver{}
	session := newTestSession(saver, nil)

	drag := session.Drag()
	drag.Start("tool-variable")
	drag.Over("1")

	committed, err := drag.End()
	require.NoError(t, err)
	require.True(t, committed)

	assert.Eventually(t, func() bool {
		return saver.callCount() == 1
	}, time.Second, 5*time.Millisecond)

	saver.mu.Lock()
	defer saver.mu.Unlock()
	require.Len(t, saver.calls[0], 2)
	assert.Equal(t, models.StepTypeVariable, saver.calls[0][1].Type)
}
