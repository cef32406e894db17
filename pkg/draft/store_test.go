package draft

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mujhtech/b0-console/pkg/log"
	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	steps := []models.WorkflowStep{
		{ActionID: "a-1", Type: models.StepTypeVariable, Name: "user", Value: "body.user"},
		{ActionID: "a-2", Type: models.StepTypeResponse, Status: "200"},
	}

	require.NoError(t, store.Save("e-1", steps))

	draft, err := store.Load("e-1")

	require.NoError(t, err)
	assert.Equal(t, "e-1", draft.EndpointID)
	assert.False(t, draft.SavedAt.IsZero())
	require.Len(t, draft.Workflows, 2)
	assert.Equal(t, models.StepTypeResponse, draft.Workflows[1].Type)
}

func TestLoadMissingDraft(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Load("nope")

	require.ErrorIs(t, err, ErrDraftNotFound)
}

func TestSaveOverwrites(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save("e-1", []models.WorkflowStep{{Type: models.StepTypeResponse}}))
	require.NoError(t, store.Save("e-1", []models.WorkflowStep{
		{Type: models.StepTypeVariable},
		{Type: models.StepTypeResponse},
	}))

	draft, err := store.Load("e-1")

	require.NoError(t, err)
	assert.Len(t, draft.Workflows, 2)
}

func TestListAndDelete(t *testing.T) {
	store := NewStore(t.TempDir())

	require.NoError(t, store.Save("e-1", nil))
	require.NoError(t, store.Save("e-2", nil))

	ids, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"e-1", "e-2"}, ids)

	require.NoError(t, store.Delete("e-1"))
	require.NoError(t, store.Delete("e-1"), "deleting twice is fine")

	ids, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"e-2"}, ids)
}

func TestListEmptyRoot(t *testing.T) {
	store := NewStore(t.TempDir() + "/missing")

	ids, err := store.List()

	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestWatchSeesExternalWrites(t *testing.T) {
	store := NewStore(t.TempDir())
	require.NoError(t, store.Save("e-1", []models.WorkflowStep{{Type: models.StepTypeResponse}}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		seen  int
		lastN int
	)

	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = store.Watch(ctx, log.WithModule("test"), "e-1", func(d *Draft) {
			mu.Lock()
			defer mu.Unlock()

			seen++
			lastN = len(d.Workflows)
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, store.Save("e-1", []models.WorkflowStep{
		{Type: models.StepTypeVariable},
		{Type: models.StepTypeResponse},
	}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return seen >= 1 && lastN == 2
	}, 3*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}
