package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// envelope is the platform's uniform response shape.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Boundary schemas. Responses are checked against these before decoding; a
// mismatch is logged and the body decoded anyway — the contract at this
// boundary is deliberately lenient, never a hard failure.
const projectSchema = `{
	"type": "object",
	"required": ["id", "name", "slug", "owner_id"],
	"properties": {
		"id": {"type": "string"},
		"name": {"type": "string"},
		"slug": {"type": "string"},
		"owner_id": {"type": "string"},
		"description": {"type": "string"},
		"language": {"type": "string"},
		"framework": {"type": "string"},
		"model": {"type": "string"},
		"server_url": {"type": "string"}
	}
}`

const endpointSchema = `{
	"type": "object",
	"required": ["id", "project_id", "method", "path"],
	"properties": {
		"id": {"type": "string"},
		"project_id": {"type": "string"},
		"method": {"type": "string", "enum": ["GET", "POST", "PUT", "DELETE", "PATCH"]},
		"path": {"type": "string"},
		"is_public": {"type": "boolean"},
		"status": {"type": "string", "enum": ["active", "inactive", "draft"]},
		"workflows": {"type": "array", "items": {"type": "object", "required": ["type"]}}
	}
}`

const featureSchema = `{
	"type": "object",
	"required": ["name", "version"],
	"properties": {
		"name": {"type": "string"},
		"version": {"type": "string"},
		"is_github_auth_enabled": {"type": "boolean"},
		"is_google_auth_enabled": {"type": "boolean"},
		"is_aws_configured": {"type": "boolean"}
	}
}`

func arrayOf(itemSchema string) string {
	return fmt.Sprintf(`{"type": "array", "items": %s}`, itemSchema)
}

var (
	schemaOnce sync.Once
	schemas    map[string]*gojsonschema.Schema
)

func compiledSchema(name string) *gojsonschema.Schema {
	schemaOnce.Do(func() {
		sources := map[string]string{
			"project":   projectSchema,
			"projects":  arrayOf(projectSchema),
			"endpoint":  endpointSchema,
			"endpoints": arrayOf(endpointSchema),
			"feature":   featureSchema,
		}

		schemas = make(map[string]*gojsonschema.Schema, len(sources))

		for key, src := range sources {
			schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
			if err != nil {
				panic(fmt.Sprintf("invalid boundary schema %q: %v", key, err))
			}

			schemas[key] = schema
		}
	})

	return schemas[name]
}

// decodeEnvelope unwraps {message, data} and leniently decodes data into out.
// Schema violations are reported through the logger only; the decoded value
// is returned uninterpreted rather than raising.
func decodeEnvelope(logger *slog.Logger, raw []byte, schemaName string, out any) (string, error) {
	var env envelope

	if err := json.Unmarshal(raw, &env); err != nil {
		return "", fmt.Errorf("decode response envelope: %w", err)
	}

	if len(env.Data) == 0 {
		return env.Message, nil
	}

	if schema := compiledSchema(schemaName); schema != nil {
		result, err := schema.Validate(gojsonschema.NewBytesLoader(env.Data))
		if err == nil && !result.Valid() {
			descs := make([]string, 0, len(result.Errors()))
			for _, desc := range result.Errors() {
				descs = append(descs, desc.String())
			}

			logger.Warn("response did not match boundary schema",
				"schema", schemaName, "violations", strings.Join(descs, "; "))
		}
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return env.Message, fmt.Errorf("decode response data: %w", err)
		}
	}

	return env.Message, nil
}
