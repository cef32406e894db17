// Package events defines the server-push event types the b0 platform emits
// while the agent works on a project.
package events

import (
	"encoding/json"
	"time"

	"github.com/mujhtech/b0-console/pkg/models"
)

type EventType string

// In-process topics the stream bridges publish on.
const TaskTopic = "b0.tasks"
const LogTopic = "b0.logs"

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Agent task lifecycle events.
	TaskStartedEvent   EventType = "task_started"
	TaskUpdatedEvent   EventType = "task_updated"
	TaskFailedEvent    EventType = "task_failed"
	TaskCompletedEvent EventType = "task_completed"

	// Build log events.
	LogStartedEvent EventType = "log_started"
	LogUpdatedEvent EventType = "log_updated"

	// Keepalive; carries no payload worth dispatching.
	PingEvent EventType = "ping"
)

// TaskEventTypes are the names subscribed on the task stream.
var TaskEventTypes = []EventType{
	TaskStartedEvent,
	TaskUpdatedEvent,
	TaskFailedEvent,
	TaskCompletedEvent,
}

// LogEventTypes are the names subscribed on the log stream.
var LogEventTypes = []EventType{
	LogStartedEvent,
	LogUpdatedEvent,
}

// AgentData is the payload carried by every agent event. All fields are
// optional; handlers interpret presence to decide state transitions.
type AgentData struct {
	Log                string                 `json:"log,omitempty"`
	Message            string                 `json:"message,omitempty"`
	Error              string                 `json:"error,omitempty"`
	Workflows          []*models.WorkflowStep `json:"workflows,omitempty"`
	Deploying          bool                   `json:"deploying,omitempty"`
	Code               any                    `json:"code,omitempty"`
	ShouldReloadWindow bool                   `json:"should_reload_window,omitempty"`
}

// StreamEvent is one named event received from a server-push stream.
type StreamEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ProjectID  string    `json:"project_id"`
	ReceivedAt time.Time `json:"received_at"`
	Data       AgentData `json:"data"`
}

func (e StreamEvent) GetType() EventType {
	return e.Type
}

// ParseAgentData decodes a raw stream payload. Unknown fields are dropped
// rather than rejected; the payload shape is dynamic by contract.
func ParseAgentData(raw []byte) (AgentData, error) {
	var data AgentData

	err := json.Unmarshal(raw, &data)

	return data, err
}
