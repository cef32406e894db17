package api

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mujhtech/b0-console/pkg/models"
	"github.com/mujhtech/b0-console/pkg/otelhelper"
)

// GetFeatures fetches the server-declared feature flags and the available
// agent models and target languages.
func (c *Client) GetFeatures(ctx context.Context) (*models.Feature, error) {
	raw, err := c.do(ctx, http.MethodGet, "/features", nil, nil)
	if err != nil {
		return nil, err
	}

	var feature models.Feature
	if _, err := decodeEnvelope(c.logger, raw, "feature", &feature); err != nil {
		return nil, err
	}

	return &feature, nil
}

func (c *Client) ListSecrets(ctx context.Context, projectID string) ([]models.Secret, error) {
	raw, err := c.do(ctx, http.MethodGet, "/projects/"+projectID+"/secrets", nil, nil,
		attribute.String(otelhelper.ProjectIDKey, projectID))
	if err != nil {
		return nil, err
	}

	var secrets []models.Secret
	if _, err := decodeEnvelope(c.logger, raw, "", &secrets); err != nil {
		return nil, err
	}

	return secrets, nil
}

func (c *Client) PutSecrets(ctx context.Context, projectID string, secrets []models.Secret) error {
	for _, secret := range secrets {
		if err := c.validator.Struct(secret); err != nil {
			return fmt.Errorf("invalid secret %q: %w", secret.Key, err)
		}
	}

	_, err := c.do(ctx, http.MethodPut, "/projects/"+projectID+"/secrets", nil, map[string][]models.Secret{
		"secrets": secrets,
	}, attribute.String(otelhelper.ProjectIDKey, projectID))

	return err
}
