package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/mujhtech/b0-console/pkg/eventbus"
	"github.com/mujhtech/b0-console/pkg/events"
	"github.com/mujhtech/b0-console/pkg/sse"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Follow a project's agent activity and build logs",
		ArgsUsage: "<project-id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() == 0 {
				return fmt.Errorf("usage: watch <project-id>")
			}

			cfg, client, logger, err := setup(ctx, command, "watch")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			projectID := command.Args().First()

			bus := eventbus.NewGoChannelBus(logger)
			defer bus.Close()

			for _, eventType := range events.TaskEventTypes {
				bus.Handle(eventType, printEvent)
			}

			for _, eventType := range events.LogEventTypes {
				bus.Handle(eventType, printEvent)
			}

			if err := bus.Subscribe(ctx, events.TaskTopic); err != nil {
				return err
			}

			if err := bus.Subscribe(ctx, events.LogTopic); err != nil {
				return err
			}

			streamClient := sse.NewClient(logger)

			go runBridge(ctx, logger, sse.NewBridge(streamClient, bus, logger, projectID),
				client.TaskStreamURL(projectID), cfg.Token, events.TaskTopic, events.TaskEventTypes)
			go runBridge(ctx, logger, sse.NewBridge(streamClient, bus, logger, projectID),
				client.LogStreamURL(projectID), cfg.Token, events.LogTopic, events.LogEventTypes)

			fmt.Println("Watching project", projectID, "(Ctrl-C to stop)")

			<-ctx.Done()

			return nil
		},
	}
}

// runBridge keeps one stream attached, retrying with a flat backoff after
// transport failures. A rejected subscription is terminal; retrying a 401
// forever would only spam the server.
func runBridge(ctx context.Context, logger *slog.Logger, bridge *sse.Bridge,
	url, token, topic string, eventTypes []events.EventType,
) {
	for {
		err := bridge.Run(ctx, url, token, topic, eventTypes)
		if err == nil {
			return
		}

		if errors.Is(err, sse.ErrStreamRejected) {
			logger.Error("stream subscription rejected", "url", url, "error", err)

			return
		}

		logger.Warn("stream dropped, reconnecting", "url", url, "error", err)

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func printEvent(_ context.Context, event *events.StreamEvent) error {
	switch event.Type {
	case events.LogStartedEvent, events.LogUpdatedEvent:
		line := event.Data.Log
		if line == "" {
			line = event.Data.Message
		}

		fmt.Println(" ", line)
	case events.TaskFailedEvent:
		message := event.Data.Error
		if message == "" {
			message = event.Data.Message
		}

		fmt.Printf("✗ %s %s\n", event.Type, message)
	default:
		fmt.Printf("• %s %s\n", event.Type, event.Data.Message)
	}

	return nil
}
