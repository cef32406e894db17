// Package models defines the domain records exchanged with the b0 platform.
package models

// StepType discriminates the workflow step variants the builder understands.
type StepType string

const (
	StepTypeRequest   StepType = "request"
	StepTypeResponse  StepType = "response"
	StepTypeIf        StepType = "if"
	StepTypeVariable  StepType = "variable"
	StepTypeSwitch    StepType = "switch"
	StepTypeCodeblock StepType = "codeblock"
	StepTypeOpenAI    StepType = "openai"
	StepTypeGithub    StepType = "github"
	StepTypeSlack     StepType = "slack"
	StepTypeDiscord   StepType = "discord"
	StepTypeTelegram  StepType = "telegram"
	StepTypeResend    StepType = "resend"
	StepTypeStripe    StepType = "stripe"
	StepTypeSupabase  StepType = "supabase"
)

// StepTypes is the closed set of step variants, in palette order.
var StepTypes = []StepType{
	StepTypeRequest,
	StepTypeResponse,
	StepTypeIf,
	StepTypeVariable,
	StepTypeSwitch,
	StepTypeCodeblock,
	StepTypeOpenAI,
	StepTypeGithub,
	StepTypeSlack,
	StepTypeDiscord,
	StepTypeTelegram,
	StepTypeResend,
	StepTypeStripe,
	StepTypeSupabase,
}

func (s StepType) Valid() bool {
	for _, t := range StepTypes {
		if s == t {
			return true
		}
	}

	return false
}

// IsIntegration reports whether the step is a third-party connector.
func (s StepType) IsIntegration() bool {
	switch s {
	case StepTypeOpenAI, StepTypeGithub, StepTypeSlack, StepTypeDiscord,
		StepTypeTelegram, StepTypeResend, StepTypeStripe, StepTypeSupabase:
		return true
	default:
		return false
	}
}

// WorkflowCase is one arm of a switch step.
type WorkflowCase struct {
	Value string         `json:"value,omitempty"`
	Body  []WorkflowStep `json:"body,omitempty"`
}

// WorkflowStep is one node of an endpoint's logic sequence. The record is a
// tagged union: Type selects which payload fields are meaningful, and the
// then/else/cases fields make the structure a tree rather than a flat list.
type WorkflowStep struct {
	ActionID    string         `json:"action_id,omitempty"`
	Type        StepType       `json:"type"                  validate:"required"`
	Name        string         `json:"name,omitempty"`
	Instruction string         `json:"instruction,omitempty"`
	Condition   string         `json:"condition,omitempty"`
	Then        []WorkflowStep `json:"then,omitempty"`
	Else        []WorkflowStep `json:"else,omitempty"`
	Cases       []WorkflowCase `json:"cases,omitempty"`
	Value       any            `json:"value,omitempty"`
	URL         string         `json:"url,omitempty"`
	Method      string         `json:"method,omitempty"`
	Headers     []string       `json:"headers,omitempty"`
	Body        any            `json:"body,omitempty"`
	Variables   []string       `json:"variables,omitempty"`
	Model       string         `json:"model,omitempty"`
	Provider    string         `json:"provider,omitempty"`
	Prompt      string         `json:"prompt,omitempty"`
	Status      string         `json:"status,omitempty"`
}

// Clone returns a deep copy of the step, including nested branches. Editor
// mutations operate on copies so earlier sequences stay comparable.
func (w WorkflowStep) Clone() WorkflowStep {
	out := w
	out.Then = CloneSteps(w.Then)
	out.Else = CloneSteps(w.Else)
	out.Headers = append([]string(nil), w.Headers...)
	out.Variables = append([]string(nil), w.Variables...)

	if w.Cases != nil {
		out.Cases = make([]WorkflowCase, len(w.Cases))
		for i, c := range w.Cases {
			out.Cases[i] = WorkflowCase{Value: c.Value, Body: CloneSteps(c.Body)}
		}
	}

	return out
}

// CloneSteps deep-copies a step sequence. A nil input stays nil so omitempty
// marshaling is preserved.
func CloneSteps(steps []WorkflowStep) []WorkflowStep {
	if steps == nil {
		return nil
	}

	out := make([]WorkflowStep, len(steps))
	for i, s := range steps {
		out[i] = s.Clone()
	}

	return out
}

// CountSteps walks the tree and counts every step, branches included.
func CountSteps(steps []WorkflowStep) int {
	total := 0

	for _, s := range steps {
		total++
		total += CountSteps(s.Then)
		total += CountSteps(s.Else)

		for _, c := range s.Cases {
			total += CountSteps(c.Body)
		}
	}

	return total
}
