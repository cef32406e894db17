package models

import "time"

// Project is one generated backend owned by the authenticated user.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerID     string    `json:"owner_id"`
	Description string    `json:"description,omitempty"`
	Slug        string    `json:"slug"`
	Language    string    `json:"language,omitempty"`
	Framework   string    `json:"framework,omitempty"`
	Port        string    `json:"port,omitempty"`
	ServerURL   string    `json:"server_url,omitempty"`
	Model       string    `json:"model,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProjectRequest describes a new backend in natural language. Model and
// framework are optional selectors; the agent picks defaults otherwise.
type CreateProjectRequest struct {
	Prompt      string `json:"prompt"                 validate:"required"`
	Model       string `json:"model,omitempty"`
	FrameworkID string `json:"framework_id,omitempty"`
}

// UpdateProjectRequest carries mutable project metadata.
type UpdateProjectRequest struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
}

// DeleteProjectRequest requires the project's own name as confirmation.
type DeleteProjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// ProjectAction names a one-shot operation the platform runs on a project.
type ProjectAction string

const (
	ProjectActionDeploy ProjectAction = "deploy"
	ProjectActionTest   ProjectAction = "test"
	ProjectActionExport ProjectAction = "export"
)

func (a ProjectAction) Valid() bool {
	switch a {
	case ProjectActionDeploy, ProjectActionTest, ProjectActionExport:
		return true
	default:
		return false
	}
}

// ChatRequest submits a natural-language instruction to the agent.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	Model   string `json:"model,omitempty"`
}
