package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mujhtech/b0-console/pkg/eventbus"
	"github.com/mujhtech/b0-console/pkg/events"
	"github.com/mujhtech/b0-console/pkg/models"
)

// DefaultReloadDelay gives transient banners a moment before the full
// reload the agent requested.
const DefaultReloadDelay = 2 * time.Second

// WorkflowSaver is the slice of the platform client the session needs.
type WorkflowSaver interface {
	SaveWorkflows(ctx context.Context, endpointID string, steps []models.WorkflowStep) error
}

// Session is one editing session over one endpoint: the document, the
// viewport, the drag controller and the persistence bridge, plus the
// transient status the stream events drive. Single-owner: one session per
// endpoint view, no multi-writer reconciliation — the last writer wins at
// the remote store.
type Session struct {
	logger   *slog.Logger
	endpoint models.Endpoint

	doc      *Document
	viewport *Viewport
	drag     *DragController
	saver    *Saver

	mu             sync.Mutex
	thinking       bool
	contextMessage string
	errMessage     string
	logs           []string

	reloadDelay time.Duration
	reloadTimer *time.Timer
	onReload    func()
}

type SessionConfig struct {
	Endpoint    models.Endpoint
	Saver       WorkflowSaver
	Palette     *Palette
	SaveDelay   time.Duration
	ReloadDelay time.Duration
	// OnReload is invoked when the agent requests a full reload of the
	// endpoint view (the navigation analog).
	OnReload func()
	Logger   *slog.Logger
}

func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	palette := cfg.Palette
	if palette == nil {
		palette = DefaultPalette()
	}

	reloadDelay := cfg.ReloadDelay
	if reloadDelay <= 0 {
		reloadDelay = DefaultReloadDelay
	}

	doc := NewDocument(cfg.Endpoint.ID, cfg.Endpoint.Workflows)

	s := &Session{
		logger:      logger,
		endpoint:    cfg.Endpoint,
		doc:         doc,
		viewport:    NewViewport(),
		drag:        NewDragController(doc, palette),
		reloadDelay: reloadDelay,
		onReload:    cfg.OnReload,
	}

	s.saver = NewSaver(func(ctx context.Context, steps []models.WorkflowStep) error {
		return cfg.Saver.SaveWorkflows(ctx, cfg.Endpoint.ID, steps)
	}, cfg.SaveDelay, logger)

	doc.OnChange(func(steps []models.WorkflowStep) {
		s.saver.Trigger(steps)
	})

	return s
}

func (s *Session) Document() *Document       { return s.doc }
func (s *Session) Viewport() *Viewport       { return s.viewport }
func (s *Session) Drag() *DragController     { return s.drag }
func (s *Session) Saver() *Saver             { return s.saver }
func (s *Session) Endpoint() models.Endpoint { return s.endpoint }

// Attach registers the session's stream handlers on the bus.
func (s *Session) Attach(bus eventbus.EventBus) {
	for _, eventType := range events.TaskEventTypes {
		bus.Handle(eventType, s.HandleTaskEvent)
	}

	for _, eventType := range events.LogEventTypes {
		bus.Handle(eventType, s.HandleLogEvent)
	}
}

// HandleTaskEvent applies one agent task lifecycle event to the session
// state.
func (s *Session) HandleTaskEvent(_ context.Context, event *events.StreamEvent) error {
	s.mu.Lock()

	switch event.Type {
	case events.TaskStartedEvent, events.TaskUpdatedEvent:
		s.thinking = true
		s.errMessage = ""
		s.contextMessage = event.Data.Message
	case events.TaskFailedEvent:
		s.thinking = false
		s.contextMessage = ""

		if event.Data.Error != "" {
			s.errMessage = event.Data.Error
		} else {
			s.errMessage = event.Data.Message
		}
	case events.TaskCompletedEvent:
		s.thinking = false
		s.contextMessage = ""

		if event.Data.Workflows != nil {
			steps := make([]models.WorkflowStep, 0, len(event.Data.Workflows))
			for _, step := range event.Data.Workflows {
				if step != nil {
					steps = append(steps, *step)
				}
			}

			// The platform already stores these; no write-back.
			s.doc.Load(steps)
		}
	}

	shouldReload := event.Data.ShouldReloadWindow

	s.mu.Unlock()

	if shouldReload {
		s.scheduleReload()
	}

	return nil
}

// HandleLogEvent appends one build log line.
func (s *Session) HandleLogEvent(_ context.Context, event *events.StreamEvent) error {
	line := event.Data.Log
	if line == "" {
		line = event.Data.Message
	}

	if line == "" {
		return nil
	}

	s.mu.Lock()
	s.logs = append(s.logs, line)
	s.mu.Unlock()

	return nil
}

// Logs returns the accumulated build log lines.
func (s *Session) Logs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.logs...)
}

func (s *Session) Thinking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.thinking
}

// Busy reports whether the loader indicator should show.
func (s *Session) Busy() bool {
	return s.Thinking() || s.saver.Saving()
}

// Banner returns the transient status line: context message, then error,
// then thinking, then saving.
func (s *Session) Banner() string {
	s.mu.Lock()
	contextMessage := s.contextMessage
	errMessage := s.errMessage
	thinking := s.thinking
	s.mu.Unlock()

	switch {
	case contextMessage != "":
		return contextMessage
	case errMessage != "":
		return errMessage
	case thinking:
		return "Thinking..."
	case s.saver.Saving():
		return "Saving..."
	default:
		return ""
	}
}

// Close flushes pending writes and stops any scheduled reload.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	if s.reloadTimer != nil {
		s.reloadTimer.Stop()
		s.reloadTimer = nil
	}
	s.mu.Unlock()

	s.saver.Close(ctx)
}

func (s *Session) scheduleReload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.onReload == nil || s.reloadTimer != nil {
		return
	}

	s.logger.Info("agent requested reload", "endpoint_id", s.endpoint.ID, "delay", s.reloadDelay)

	s.reloadTimer = time.AfterFunc(s.reloadDelay, func() {
		s.mu.Lock()
		s.reloadTimer = nil
		s.mu.Unlock()

		s.onReload()
	})
}
