package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

func (c *Client) ListEndpoints(ctx context.Context, projectID string) ([]models.Endpoint, error) {
	query := url.Values{"project_id": []string{projectID}}

	raw, err := c.do(ctx, http.MethodGet, "/endpoints", query, nil,
		attribute.String(otelhelper.ProjectIDKey, projectID))
	if err != nil {
		return nil, err
	}

	var endpoints []models.Endpoint
	if _, err := decodeEnvelope(c.logger, raw, "endpoints", &endpoints); err != nil {
		return nil, err
	}

	return endpoints, nil
}

func (c *Client) GetEndpoint(ctx context.Context, id string) (*models.Endpoint, error) {
	raw, err := c.do(ctx, http.MethodGet, "/endpoints/"+id, nil, nil,
		attribute.String(otelhelper.EndpointIDKey, id))
	if err != nil {
		return nil, err
	}

	var endpoint models.Endpoint
	if _, err := decodeEnvelope(c.logger, raw, "endpoint", &endpoint); err != nil {
		return nil, err
	}

	return &endpoint, nil
}

func (c *Client) CreateEndpoint(ctx context.Context, req models.CreateOrUpdateEndpointRequest) (*models.Endpoint, error) {
	if err := c.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid create endpoint request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, "/endpoints", nil, req)
	if err != nil {
		return nil, err
	}

	var endpoint models.Endpoint
	if _, err := decodeEnvelope(c.logger, raw, "endpoint", &endpoint); err != nil {
		return nil, err
	}

	return &endpoint, nil
}

func (c *Client) UpdateEndpoint(ctx context.Context, id string, req models.CreateOrUpdateEndpointRequest) (*models.Endpoint, error) {
	if err := c.validator.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid update endpoint request: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPut, "/endpoints/"+id, nil, req,
		attribute.String(otelhelper.EndpointIDKey, id))
	if err != nil {
		return nil, err
	}

	var endpoint models.Endpoint
	if _, err := decodeEnvelope(c.logger, raw, "endpoint", &endpoint); err != nil {
		return nil, err
	}

	return &endpoint, nil
}

// SaveWorkflows pushes the full step sequence of an endpoint. This is the
// persistence bridge's write target; the whole array replaces the stored one.
func (c *Client) SaveWorkflows(ctx context.Context, endpointID string, steps []models.WorkflowStep) error {
	body := map[string][]models.WorkflowStep{"workflows": steps}

	_, err := c.do(ctx, http.MethodPut, "/endpoints/"+endpointID+"/workflows", nil, body,
		attribute.String(otelhelper.EndpointIDKey, endpointID))

	return err
}
