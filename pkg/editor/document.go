// Package editor implements the workflow editing surface: the step document,
// the canvas viewport, the drag gesture controller and the debounced
// persistence bridge, tied together by a Session.
package editor

import (
	"fmt"
	"sync"

	"github.com/mujhtech/b0-console/pkg/models"
)

// ChangeFunc observes every document mutation with the new persisted
// sequence (the implicit request step stripped).
type ChangeFunc func(steps []models.WorkflowStep)

// Document holds the ordered step sequence of one endpoint. Index 0 is
// always the implicit request step: rendered and addressable, but stripped
// before persistence. Every mutation builds a fresh slice, so snapshots
// taken via Steps stay valid.
//
// Mutations arrive from several goroutines at once — the editing surface,
// the stream handlers pushing agent-regenerated workflows, and the draft
// watcher feeding external edits — so all access to the sequence goes
// through one mutex. The change observer is invoked outside the lock.
//
// No step-type-specific validation happens here; each editor panel owns the
// well-formedness of its payload before handing the record back.
type Document struct {
	endpointID string
	onChange   ChangeFunc

	mu    sync.Mutex
	steps []models.WorkflowStep
}

// NewDocument builds the document from an endpoint's persisted sequence,
// prepending the implicit request step.
func NewDocument(endpointID string, persisted []models.WorkflowStep) *Document {
	return &Document{
		endpointID: endpointID,
		steps:      withRequestStep(persisted),
	}
}

// OnChange registers the mutation observer. One observer is enough: the
// session fans out from there. Register before the document is shared
// between goroutines.
func (d *Document) OnChange(fn ChangeFunc) {
	d.onChange = fn
}

func (d *Document) EndpointID() string {
	return d.endpointID
}

// Len includes the implicit request step.
func (d *Document) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.steps)
}

// Steps returns a copy of the full rendered sequence.
func (d *Document) Steps() []models.WorkflowStep {
	d.mu.Lock()
	defer d.mu.Unlock()

	return models.CloneSteps(d.steps)
}

// PersistedSteps returns the sequence as written to the platform: everything
// after the implicit request step.
func (d *Document) PersistedSteps() []models.WorkflowStep {
	d.mu.Lock()
	defer d.mu.Unlock()

	return models.CloneSteps(d.steps[1:])
}

// StepAt returns the step at the rendered index.
func (d *Document) StepAt(index int) (models.WorkflowStep, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if index < 0 || index >= len(d.steps) {
		return models.WorkflowStep{}, fmt.Errorf("step index %d out of range [0,%d)", index, len(d.steps))
	}

	return d.steps[index].Clone(), nil
}

// InsertAt places step at the rendered index, shifting the rest down.
// Index 0 is reserved for the request step.
func (d *Document) InsertAt(index int, step models.WorkflowStep) error {
	d.mu.Lock()

	if index < 1 || index > len(d.steps) {
		length := len(d.steps)
		d.mu.Unlock()

		return fmt.Errorf("insert index %d out of range [1,%d]", index, length)
	}

	next := make([]models.WorkflowStep, 0, len(d.steps)+1)
	next = append(next, d.steps[:index]...)
	next = append(next, step.Clone())
	next = append(next, d.steps[index:]...)

	d.commitAndNotify(next)

	return nil
}

// ReplaceAt swaps the step at the rendered index for the updated record.
func (d *Document) ReplaceAt(index int, step models.WorkflowStep) error {
	d.mu.Lock()

	if index < 1 || index >= len(d.steps) {
		length := len(d.steps)
		d.mu.Unlock()

		return fmt.Errorf("replace index %d out of range [1,%d)", index, length)
	}

	next := models.CloneSteps(d.steps)
	next[index] = step.Clone()

	d.commitAndNotify(next)

	return nil
}

// RemoveAt splices out exactly the step at the rendered index.
func (d *Document) RemoveAt(index int) error {
	d.mu.Lock()

	if index < 1 || index >= len(d.steps) {
		length := len(d.steps)
		d.mu.Unlock()

		return fmt.Errorf("remove index %d out of range [1,%d)", index, length)
	}

	next := make([]models.WorkflowStep, 0, len(d.steps)-1)
	next = append(next, d.steps[:index]...)
	next = append(next, d.steps[index+1:]...)

	d.commitAndNotify(next)

	return nil
}

// Move removes the step at from and re-inserts it at to, both rendered
// indexes. Moving onto the same slot is a no-op without notification.
func (d *Document) Move(from, to int) error {
	d.mu.Lock()

	if from < 1 || from >= len(d.steps) {
		length := len(d.steps)
		d.mu.Unlock()

		return fmt.Errorf("move source %d out of range [1,%d)", from, length)
	}

	if to < 1 || to >= len(d.steps) {
		length := len(d.steps)
		d.mu.Unlock()

		return fmt.Errorf("move target %d out of range [1,%d)", to, length)
	}

	if from == to {
		d.mu.Unlock()

		return nil
	}

	moved := d.steps[from]

	next := make([]models.WorkflowStep, 0, len(d.steps))
	next = append(next, d.steps[:from]...)
	next = append(next, d.steps[from+1:]...)

	tail := make([]models.WorkflowStep, 0, len(d.steps))
	tail = append(tail, next[:to]...)
	tail = append(tail, moved)
	tail = append(tail, next[to:]...)

	d.commitAndNotify(tail)

	return nil
}

// ReplaceAll swaps the whole persisted sequence as a local edit, scheduling
// persistence like any other mutation.
func (d *Document) ReplaceAll(persisted []models.WorkflowStep) {
	d.mu.Lock()
	d.commitAndNotify(withRequestStep(persisted))
}

// Load swaps the sequence without notifying: used when the agent pushes
// regenerated workflows over the stream, which the platform already stores.
func (d *Document) Load(persisted []models.WorkflowStep) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.steps = withRequestStep(persisted)
}

func withRequestStep(persisted []models.WorkflowStep) []models.WorkflowStep {
	next := make([]models.WorkflowStep, 0, len(persisted)+1)
	next = append(next, models.WorkflowStep{Type: models.StepTypeRequest})
	next = append(next, models.CloneSteps(persisted)...)

	return next
}

// commitAndNotify installs the new sequence and releases the lock before
// invoking the observer, so the observer may call back into the document.
// Callers must hold d.mu.
func (d *Document) commitAndNotify(next []models.WorkflowStep) {
	d.steps = next
	snapshot := models.CloneSteps(next[1:])
	d.mu.Unlock()

	if d.onChange != nil {
		d.onChange(snapshot)
	}
}
