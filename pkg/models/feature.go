package models

// AIModel is one agent model the platform offers.
type AIModel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider,omitempty"`
	Default  bool   `json:"default,omitempty"`
}

// Feature is the server-declared capability set. It drives which affordances
// the client shows; absent flags default to false.
type Feature struct {
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	IsGithubAuthEnabled bool      `json:"is_github_auth_enabled"`
	IsGoogleAuthEnabled bool      `json:"is_google_auth_enabled"`
	IsAWSConfigured     bool      `json:"is_aws_configured"`
	Version             string    `json:"version"`
	Models              []AIModel `json:"models,omitempty"`
	Languages           []string  `json:"languages,omitempty"`
}

// Secret is one environment secret of a project. Values are write-only from
// the client's perspective; reads return masked values.
type Secret struct {
	Key   string `json:"key"   validate:"required"`
	Value string `json:"value"`
}
