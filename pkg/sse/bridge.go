package sse

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mujhtech/b0-console/pkg/eventbus"
	"github.com/mujhtech/b0-console/pkg/events"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

// Bridge pumps one server-push stream onto an in-process topic, turning raw
// frames into typed stream events for the session handlers.
type Bridge struct {
	client    *Client
	bus       eventbus.EventBus
	logger    *slog.Logger
	tracer    trace.Tracer
	projectID string
}

func NewBridge(client *Client, bus eventbus.EventBus, logger *slog.Logger, projectID string) *Bridge {
	return &Bridge{
		client:    client,
		bus:       bus,
		logger:    logger,
		tracer:    otel.Tracer("b0-console/sse"),
		projectID: projectID,
	}
}

// Run streams from url and publishes each subscribed event on topic until
// ctx is cancelled or the transport fails. Payloads that fail to decode are
// logged and dropped; one malformed frame must not end the stream.
func (b *Bridge) Run(ctx context.Context, url, token, topic string, eventTypes []events.EventType) error {
	names := make([]string, len(eventTypes))
	for i, t := range eventTypes {
		names[i] = string(t)
	}

	opts := Options{
		URL:    url,
		Token:  token,
		Events: names,
	}

	return b.client.Stream(ctx, opts, func(eventType string, data []byte) {
		agentData, err := events.ParseAgentData(data)
		if err != nil {
			b.logger.Warn("dropping undecodable stream payload",
				"event_type", eventType, "project_id", b.projectID, "error", err)

			return
		}

		event := &events.StreamEvent{
			ID:         b.bus.GenerateID(),
			Type:       events.EventType(eventType),
			ProjectID:  b.projectID,
			ReceivedAt: time.Now().UTC(),
			Data:       agentData,
		}

		publishCtx, span := otelhelper.StartSpan(ctx, b.tracer, "stream.dispatch",
			attribute.String(otelhelper.EventTypeKey, eventType),
			attribute.String(otelhelper.ProjectIDKey, b.projectID))
		defer span.End()

		if err := b.bus.Publish(publishCtx, topic, b.projectID, event); err != nil {
			otelhelper.SetError(span, err)
			b.logger.Error("failed to publish stream event",
				"topic", topic, "event_type", eventType, "error", err)
		}
	})
}
