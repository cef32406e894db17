package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"

	"github.com/mujhtech/b0-console/pkg/models"
)

func projectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "projects",
		Usage: "List and manage projects",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all projects",
				Action: func(ctx context.Context, command *cli.Command) error {
					_, client, _, err := setup(ctx, command, "projects")
					if err != nil {
						return err
					}

					projects, err := client.ListProjects(ctx)
					if err != nil {
						return err
					}

					w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tFRAMEWORK\tSERVER")

					for _, p := range projects {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Framework, p.ServerURL)
					}

					return w.Flush()
				},
			},
			{
				Name:      "create",
				Usage:     "Describe a new backend for the agent to build",
				ArgsUsage: "<prompt>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "model",
						Usage: "AI model to use",
					},
					&cli.StringFlag{
						Name:  "framework",
						Usage: "Target framework id",
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					if command.Args().Len() == 0 {
						return fmt.Errorf("usage: projects create <prompt>")
					}

					_, client, logger, err := setup(ctx, command, "projects")
					if err != nil {
						return err
					}

					project, err := client.CreateProject(ctx, models.CreateProjectRequest{
						Prompt:      command.Args().First(),
						Model:       command.String("model"),
						FrameworkID: command.String("framework"),
					})
					if err != nil {
						return err
					}

					logger.Info("project created", "id", project.ID, "name", project.Name)
					fmt.Println(project.ID)

					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a project, confirming with its name",
				ArgsUsage: "<project-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Project name, typed out as confirmation",
						Required: true,
					},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					if command.Args().Len() == 0 {
						return fmt.Errorf("usage: projects delete <project-id> --name <name>")
					}

					_, client, logger, err := setup(ctx, command, "projects")
					if err != nil {
						return err
					}

					id := command.Args().First()
					if err := client.DeleteProject(ctx, id, command.String("name")); err != nil {
						return err
					}

					logger.Info("project deleted", "id", id)

					return nil
				},
			},
		},
	}
}

func actionCommand() *cli.Command {
	return &cli.Command{
		Name:      "action",
		Usage:     "Run a one-shot project action",
		ArgsUsage: "<project-id> <deploy|test|export>",
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() < 2 {
				return fmt.Errorf("usage: action <project-id> <deploy|test|export>")
			}

			_, client, _, err := setup(ctx, command, "action")
			if err != nil {
				return err
			}

			message, err := client.ProjectAction(ctx,
				command.Args().Get(0),
				models.ProjectAction(command.Args().Get(1)),
			)
			if err != nil {
				return err
			}

			if message != "" {
				fmt.Println(message)
			}

			return nil
		},
	}
}

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send an instruction to the project's agent",
		ArgsUsage: "<project-id> <message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "model",
				Usage: "AI model to use for this instruction",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			if command.Args().Len() < 2 {
				return fmt.Errorf("usage: chat <project-id> <message>")
			}

			_, client, _, err := setup(ctx, command, "chat")
			if err != nil {
				return err
			}

			message, err := client.Chat(ctx, command.Args().Get(0), models.ChatRequest{
				Message: command.Args().Get(1),
				Model:   command.String("model"),
			})
			if err != nil {
				return err
			}

			if message != "" {
				fmt.Println(message)
			}

			return nil
		},
	}
}
