package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mujhtech/b0-console/pkg/models"
)

// ToolIDPrefix marks drag ids that come from the tool palette rather than
// from an existing step card.
const ToolIDPrefix = "tool-"

// Tool is one draggable template in the palette. Dropping it instantiates a
// fresh workflow step.
type Tool struct {
	ID       string
	Name     string
	Type     models.StepType
	Defaults func() models.WorkflowStep
}

// Palette is the registry of available tools, keyed by drag id.
type Palette struct {
	tools map[string]Tool
	order []string
}

func NewPalette() *Palette {
	return &Palette{tools: make(map[string]Tool)}
}

func (p *Palette) Register(tool Tool) {
	if _, exists := p.tools[tool.ID]; !exists {
		p.order = append(p.order, tool.ID)
	}

	p.tools[tool.ID] = tool
}

// Tools lists registered tools in registration order.
func (p *Palette) Tools() []Tool {
	out := make([]Tool, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.tools[id])
	}

	return out
}

// Instantiate synthesizes a new step for the tool, with a generated
// action id. Timestamp-derived ids are not unique under rapid inserts, so
// ids are uuids here.
func (p *Palette) Instantiate(toolID string) (models.WorkflowStep, error) {
	tool, ok := p.tools[toolID]
	if !ok {
		return models.WorkflowStep{}, fmt.Errorf("tool %q not registered", toolID)
	}

	var step models.WorkflowStep
	if tool.Defaults != nil {
		step = tool.Defaults()
	}

	step.ActionID = uuid.NewString()
	step.Type = tool.Type

	if step.Name == "" {
		step.Name = tool.Name
	}

	return step, nil
}

// DefaultPalette registers every step type the builder offers, in the order
// the tool panel shows them.
func DefaultPalette() *Palette {
	p := NewPalette()

	entries := []struct {
		name     string
		stepType models.StepType
		defaults func() models.WorkflowStep
	}{
		{"Response", models.StepTypeResponse, func() models.WorkflowStep {
			return models.WorkflowStep{Status: "200"}
		}},
		{"If", models.StepTypeIf, func() models.WorkflowStep {
			return models.WorkflowStep{Then: []models.WorkflowStep{}, Else: []models.WorkflowStep{}}
		}},
		{"Variable", models.StepTypeVariable, nil},
		{"Switch", models.StepTypeSwitch, func() models.WorkflowStep {
			return models.WorkflowStep{Cases: []models.WorkflowCase{}}
		}},
		{"Codeblock", models.StepTypeCodeblock, nil},
		{"OpenAI", models.StepTypeOpenAI, func() models.WorkflowStep {
			return models.WorkflowStep{Provider: "openai"}
		}},
		{"GitHub", models.StepTypeGithub, nil},
		{"Slack", models.StepTypeSlack, nil},
		{"Discord", models.StepTypeDiscord, nil},
		{"Telegram", models.StepTypeTelegram, nil},
		{"Resend", models.StepTypeResend, nil},
		{"Stripe", models.StepTypeStripe, nil},
		{"Supabase", models.StepTypeSupabase, nil},
	}

	for _, e := range entries {
		p.Register(Tool{
			ID:       ToolIDPrefix + string(e.stepType),
			Name:     e.name,
			Type:     e.stepType,
			Defaults: e.defaults,
		})
	}

	return p
}
