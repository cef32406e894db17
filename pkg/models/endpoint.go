package models

import "time"

// EndpointStatus represents the lifecycle state of an endpoint.
type EndpointStatus string

const (
	EndpointStatusActive   EndpointStatus = "active"
	EndpointStatusInactive EndpointStatus = "inactive"
	EndpointStatusDraft    EndpointStatus = "draft"
)

// Endpoint is one HTTP route of a generated backend, together with the
// workflow step sequence that implements it.
type Endpoint struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"        validate:"required"`
	Description string         `json:"description,omitempty"`
	OwnerID     string         `json:"owner_id"`
	ProjectID   string         `json:"project_id"  validate:"required"`
	Path        string         `json:"path"        validate:"required,startswith=/"`
	Method      string         `json:"method"      validate:"required,oneof=GET POST PUT DELETE PATCH"`
	IsPublic    bool           `json:"is_public"`
	Status      EndpointStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Workflows   []WorkflowStep `json:"workflows"`
}

// CreateOrUpdateEndpointRequest is the payload for endpoint metadata writes.
type CreateOrUpdateEndpointRequest struct {
	Name        string `json:"name"                  validate:"required"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method"                validate:"required,oneof=GET POST PUT DELETE PATCH"`
	Path        string `json:"path"                  validate:"required,startswith=/"`
	IsPublic    bool   `json:"is_public"`
	ProjectID   string `json:"project_id"            validate:"required"`
}
