package api

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	raw, err := c.do(ctx, http.MethodGet, "/projects", nil, nil)
	if err != nil {
		return nil, err
	}

	var projects []models.Project
	if _, err := decodeEnvelope(c.logger, raw, "projects", &projects); err != nil {
		return nil, err
	}

	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	raw, err := c.do(ctx, http.MethodGet, "/projects/"+id, nil, nil,
		attribute.String(otelhelper.ProjectIDKey, id))
	if err != nil {
		return nil, err
	}

	var project models.Project
	if _, err := decodeEnvelope(c.logger, raw, "project", &project); err != nil {
		return nil, err
	}

	return &project, nil
}

// CreateProject submits a natural-language prompt; the agent scaffolds the
// backend asynchronously and reports progress on the project's task stream.
func (c *Client) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	if err := c.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid create project request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/projects", nil, req)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if _, err := decodeEnvelope(c.logger, raw, "project", &project); err != nil {
		return nil, err
	}

	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, req models.UpdateProjectRequest) (*models.Project, error) {
	raw, err := c.do(ctx, http.MethodPut, "/projects/"+id, nil, req,
		attribute.String(otelhelper.ProjectIDKey, id))
	if err != nil {
		return nil, err
	}

	var project models.Project
	if _, err := decodeEnvelope(c.logger, raw, "project", &project); err != nil {
		return nil, err
	}

	return &project, nil
}

// DeleteProject requires the project's own name as a confirmation field.
func (c *Client) DeleteProject(ctx context.Context, id, name string) error {
	req := models.DeleteProjectRequest{Name: name}

	if err := c.validator.Struct(req); err != nil {
		return fmt.Errorf("invalid delete project request: %w", err)
	}

	_, err := c.do(ctx, http.MethodDelete, "/projects/"+id, nil, req,
		attribute.String(otelhelper.ProjectIDKey, id))

	return err
}

// ProjectAction triggers a named one-shot operation (deploy, test, export).
// The returned message is the server's acknowledgement; outcomes arrive on
// the task stream.
func (c *Client) ProjectAction(ctx context.Context, id string, action models.ProjectAction) (string, error) {
	if !action.Valid() {
		return "", fmt.Errorf("unknown project action %q", action)
	}

	raw, err := c.do(ctx, http.MethodPost, "/projects/"+id+"/action", nil, map[string]string{
		"action": string(action),
	}, attribute.String(otelhelper.ProjectIDKey, id))
	if err != nil {
		return "", err
	}

	message, err := decodeEnvelope(c.logger, raw, "", nil)

	return message, err
}

// Chat submits an instruction to the agent for the given project.
func (c *Client) Chat(ctx context.Context, projectID string, req models.ChatRequest) (string, error) {
	if err := c.validator.Struct(req); err != nil {
		return "", fmt.Errorf("invalid chat request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/chat/"+projectID, nil, req,
		attribute.String(otelhelper.ProjectIDKey, projectID))
	if err != nil {
		return "", err
	}

	message, err := decodeEnvelope(c.logger, raw, "", nil)

	return message, err
}
