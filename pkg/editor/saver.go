package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

// DefaultSaveDelay is the quiet period after the last edit before a write
// goes out. Bursts of edits (several drags in a row) coalesce into one
// network round-trip.
const DefaultSaveDelay = 1500 * time.Millisecond

// SaveFunc performs the remote write of a full step sequence.
type SaveFunc func(ctx context.Context, steps []models.WorkflowStep) error

// Saver is the persistence bridge: a trailing debounce in front of
// SaveWorkflows. Local state is optimistic — a failed write keeps the
// committed local sequence and only reports the error.
//
// Overlapping writes are sequenced with a monotonic flush counter: a
// response landing for anything but the newest flush is ignored for state
// purposes, so the saving flag and the error surface always describe the
// last edit made, not the last response to arrive.
type Saver struct {
	save   SaveFunc
	delay  time.Duration
	logger *slog.Logger
	tracer trace.Tracer

	onState func(saving bool)
	onError func(err error)

	mu         sync.Mutex
	timer      *time.Timer
	pending    []models.WorkflowStep
	hasPending bool
	seq        uint64
	newest     uint64
	saving     bool

	wg sync.WaitGroup
}

func NewSaver(save SaveFunc, delay time.Duration, logger *slog.Logger) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}

	return &Saver{
		save:   save,
		delay:  delay,
		logger: logger,
		tracer: otel.Tracer("b0-console/editor"),
	}
}

// OnStateChange observes the saving flag for UI feedback.
func (s *Saver) OnStateChange(fn func(saving bool)) {
	s.onState = fn
}

// OnError observes failed writes (the toast surface).
func (s *Saver) OnError(fn func(err error)) {
	s.onError = fn
}

// Saving reports whether the newest flush is still in flight.
func (s *Saver) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saving
}

// Trigger schedules a write of steps after the quiet period, replacing any
// previously pending sequence.
func (s *Saver) Trigger(steps []models.WorkflowStep) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = steps
	s.hasPending = true

	if s.timer == nil {
		s.timer = time.AfterFunc(s.delay, s.flushTimer)
	} else {
		s.timer.Reset(s.delay)
	}
}

// Flush writes any pending sequence immediately, bypassing the debounce.
func (s *Saver) Flush(ctx context.Context) {
	s.mu.Lock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	s.startFlushLocked(ctx)
	s.mu.Unlock()
}

// Close flushes pending work and waits for in-flight writes.
func (s *Saver) Close(ctx context.Context) {
	s.Flush(ctx)
	s.wg.Wait()
}

func (s *Saver) flushTimer() {
	s.mu.Lock()
	s.timer = nil
	s.startFlushLocked(context.Background())
	s.mu.Unlock()
}

func (s *Saver) startFlushLocked(ctx context.Context) {
	if !s.hasPending {
		return
	}

	steps := s.pending
	s.pending = nil
	s.hasPending = false

	s.seq++
	flushSeq := s.seq
	s.newest = flushSeq
	s.setSavingLocked(true)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		flushCtx, span := otelhelper.StartSpan(ctx, s.tracer, "editor.flush_workflows",
			attribute.Int64(otelhelper.FlushSeqKey, int64(flushSeq)))
		defer span.End()

		err := s.save(flushCtx, steps)
		if err != nil {
			otelhelper.SetError(span, err)
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		if flushSeq != s.newest {
			// A newer flush owns the state now; this response is stale.
			s.logger.Debug("ignoring stale save response", "seq", flushSeq, "newest", s.newest)

			return
		}

		s.setSavingLocked(false)

		if err != nil {
			s.logger.Error("failed to save workflows", "seq", flushSeq, "error", err)

			if s.onError != nil {
				s.onError(err)
			}
		}
	}()
}

func (s *Saver) setSavingLocked(saving bool) {
	if s.saving == saving {
		return
	}

	s.saving = saving

	if s.onState != nil {
		s.onState(saving)
	}
}
