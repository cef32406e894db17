package sse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mujhtech/b0-console/pkg/eventbus"
	"github.com/mujhtech/b0-console/pkg/events"
	"github.com/mujhtech/b0-console/pkg/log"
)

func TestBridgePublishesTypedEvents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: task_started\ndata: {\"message\":\"planning\"}\n\n")
		fmt.Fprint(w, "event: task_completed\ndata: {\"workflows\":[{\"type\":\"response\"}]}\n\n")
		flusher.Flush()
	}))
	defer server.Close()

	logger := log.WithModule("test")
	bus := eventbus.NewTestBus(logger)

	defer bus.Close()

	var (
		mu   sync.Mutex
		seen []*events.StreamEvent
	)

	for _, eventType := range events.TaskEventTypes {
		bus.Handle(eventType, func(_ context.Context, event *events.StreamEvent) error {
			mu.Lock()
			defer mu.Unlock()

			seen = append(seen, event)

			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx, events.TaskTopic))

	bridge := NewBridge(NewClient(logger), bus, logger, "p-1")

	err := bridge.Run(ctx, server.URL, "tok", events.TaskTopic, events.TaskEventTypes)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, events.TaskStartedEvent, seen[0].Type)
	assert.Equal(t, "planning", seen[0].Data.Message)
	assert.Equal(t, "p-1", seen[0].ProjectID)
	assert.NotEmpty(t, seen[0].ID)
	assert.Equal(t, events.TaskCompletedEvent, seen[1].Type)
	require.Len(t, seen[1].Data.Workflows, 1)
}

func TestBridgeDropsMalformedPayloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "event: task_updated\ndata: {not json\n\n")
		fmt.Fprint(w, "event: task_updated\ndata: {\"message\":\"still here\"}\n\n")
	}))
	defer server.Close()

	logger := log.WithModule("test")
	bus := eventbus.NewTestBus(logger)

	defer bus.Close()

	var (
		mu   sync.Mutex
		seen []*events.StreamEvent
	)

	bus.Handle(events.TaskUpdatedEvent, func(_ context.Context, event *events.StreamEvent) error {
		mu.Lock()
		defer mu.Unlock()

		seen = append(seen, event)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx, events.TaskTopic))

	bridge := NewBridge(NewClient(logger), bus, logger, "p-1")

	require.NoError(t, bridge.Run(ctx, server.URL, "", events.TaskTopic, events.TaskEventTypes))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(seen) == 1 && seen[0].Data.Message == "still here"
	}, 2*time.Second, 10*time.Millisecond)
}
