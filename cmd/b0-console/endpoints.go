package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/mujhtech/b0-console/pkg/preview"
)

func endpointsCommand() *cli.Command {
	return &cli.Command{
		Name:  "endpoints",
		Usage: "List and inspect a project's endpoints",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List endpoints of a project",
				ArgsUsage: "<project-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					if command.Args().Len() == 0 {
						return fmt.Errorf("usage: endpoints list <project-id>")
					}

					_, client, _, err := setup(ctx, command, "endpoints")
					if err != nil {
						return err
					}

					endpoints, err := client.ListEndpoints(ctx, command.Args().First())
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tMETHOD\tPATH\tSTATUS\tSTEPS")

					for _, e := range endpoints {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
							e.ID, e.Method, e.Path, e.Status, models.CountSteps(e.Workflows))
					}

					return w.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "Print one endpoint with its workflow tree",
				ArgsUsage: "<endpoint-id>",
				Action: func(ctx context.Context, command *cli.Command) error {
					if command.Args().Len() == 0 {
						return fmt.Errorf("usage: endpoints show <endpoint-id>")
					}

					_, client, _, err := setup(ctx, command, "endpoints")
					if err != nil {
						return err
					}

					endpoint, err := client.GetEndpoint(ctx, command.Args().First())
					if err != nil {
						return err
					}

					payload, err := json.MarshalIndent(endpoint, "", "  ")
					if err != nil {
						return err
					}

					fmt.Println(string(payload))

					return nil
				},
			},
			{
				Name:      "preview",
				Usage:     "Dry-run an endpoint's workflow against a sample request",
				ArgsUsage: "<endpoint-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "env",
						Usage: "Sample request environment as JSON, e.g. '{\"age\": 21}'",
						Value: "{}",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					if command.Args().Len() == 0 {
						return fmt.Errorf("usage: endpoints preview <endpoint-id>")
					}

					_, client, _, err := setup(ctx, command, "endpoints")
					if err != nil {
						return err
					}

					endpoint, err := client.GetEndpoint(ctx, command.Args().First())
					if err != nil {
						return err
					}

					var env map[string]any
					if err := json.Unmarshal([]byte(command.String("env")), &env); err != nil {
						return fmt.Errorf("parse --env: %w", err)
					}

					result, err := preview.Run(endpoint.Workflows, env)
					if err != nil {
						return err
					}

					for _, label := range result.Path {
						fmt.Println("→", label)
					}

					for _, label := range result.Skipped {
						fmt.Println("  skipped (needs platform):", label)
					}

					if result.Response != nil {
						fmt.Println("response:", result.Response.Status)
					} else {
						fmt.Println("no response step reached")
					}

					return nil
				},
			},
		},
	}
}
