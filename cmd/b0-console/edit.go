package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/mujhtech/b0-console/pkg/api"
	"github.com/mujhtech/b0-console/pkg/draft"
	"github.com/mujhtech/b0-console/pkg/editor"
	"github.com/mujhtech/b0-console/pkg/eventbus"
	"github.com/mujhtech/b0-console/pkg/events"
	"github.com/mujhtech/b0-console/pkg/sse"
)

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit an endpoint's workflow through a draft file",
		ArgsUsage: "<endpoint-id>",
		Description: strings.TrimSpace(`
Exports the endpoint's workflow to a draft file under the draft directory,
then watches it: every save of the file becomes a debounced write to the
platform, while agent activity streams in as status and log lines. Point
$EDITOR at the printed path and work; Ctrl-C flushes and exits.`),
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "save-delay",
				Usage: "Debounce window before edits are persisted",
				Value: editor.DefaultSaveDelay,
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() == 0 {
				return fmt.Errorf("usage: edit <endpoint-id>")
			}

			cfg, client, logger, err := setup(ctx, command, "edit")
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			endpoint, err := client.GetEndpoint(ctx, command.Args().First())
			if api.IsNotFound(err) {
				return fmt.Errorf("endpoint %s does not exist (see `endpoints list`)", command.Args().First())
			}

			if err != nil {
				return err
			}

			var session *editor.Session

			session = editor.NewSession(editor.SessionConfig{
				Endpoint:  *endpoint,
				Saver:     client,
				SaveDelay: command.Duration("save-delay"),
				Logger:    logger,
				OnReload: func() {
					refreshed, err := client.GetEndpoint(ctx, endpoint.ID)
					if err != nil {
						logger.Warn("reload requested but fetch failed", "error", err)

						return
					}

					session.Document().Load(refreshed.Workflows)
				},
			})

			session.Saver().OnError(func(err error) {
				logger.Error("save failed, local edits kept", "endpoint_id", endpoint.ID, "error", err)
			})

			store := draft.NewStore(cfg.DraftDir)
			if err := store.Save(endpoint.ID, session.Document().PersistedSteps()); err != nil {
				return err
			}

			fmt.Printf("Editing %s %s\nDraft: %s\n", endpoint.Method, endpoint.Path, store.Path(endpoint.ID))

			bus := eventbus.NewGoChannelBus(logger)
			defer bus.Close()

			session.Attach(bus)

			if err := bus.Subscribe(ctx, events.TaskTopic); err != nil {
				return err
			}

			if err := bus.Subscribe(ctx, events.LogTopic); err != nil {
				return err
			}

			streamClient := sse.NewClient(logger)

			go runBridge(ctx, logger, sse.NewBridge(streamClient, bus, logger, endpoint.ProjectID),
				client.TaskStreamURL(endpoint.ProjectID), cfg.Token, events.TaskTopic, events.TaskEventTypes)
			go runBridge(ctx, logger, sse.NewBridge(streamClient, bus, logger, endpoint.ProjectID),
				client.LogStreamURL(endpoint.ProjectID), cfg.Token, events.LogTopic, events.LogEventTypes)

			go func() {
				err := store.Watch(ctx, logger, endpoint.ID, func(d *draft.Draft) {
					session.Document().ReplaceAll(d.Workflows)
				})
				if err != nil {
					logger.Error("draft watcher stopped", "error", err)
				}
			}()

			printStatus(ctx, session)

			// Flush pending edits before exiting.
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			session.Close(flushCtx)

			return store.Save(endpoint.ID, session.Document().PersistedSteps())
		},
	}
}

// printStatus renders the banner and build log to the terminal until ctx is
// cancelled.
func printStatus(ctx context.Context, session *editor.Session) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var lastBanner string

	var printedLogs int

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if banner := session.Banner(); banner != lastBanner {
				lastBanner = banner

				if banner != "" {
					fmt.Println("•", banner)
				}
			}

			logs := session.Logs()
			for ; printedLogs < len(logs); printedLogs++ {
				fmt.Println(" ", logs[printedLogs])
			}
		}
	}
}
