package agent

import "strings"

// Agent names used in configuration keys and log fields
const (
	PlannerName    = "planner"
	DocumenterName = "documenter"
)

// Default model settings shared by both agents
const (
	DefaultModelID     = "o3-mini"
	DefaultTemperature = 0.7
)

// Profile describes one agent persona and the model settings it runs with
type Profile struct {
	Name            string
	Role            string
	Goal            string
	Backstory       string
	ModelID         string
	Temperature     float64
	AllowDelegation bool
}

// Task is a single unit of work handed to an Executor
type Task struct {
	Description    string
	ExpectedOutput string
	Agent          Profile
}

// Override replaces individual profile fields; zero values keep the default
type Override struct {
	Model       string
	Temperature *float64
	Role        string
	Goal        string
	Backstory   string
}

// Profiles holds the two agent profiles. It is built once and only read afterwards.
type Profiles struct {
	planner    Profile
	documenter Profile
}

// Planner returns the project analysis agent
func (p Profiles) Planner() Profile {
	return p.planner
}

// Documenter returns the README writing agent
func (p Profiles) Documenter() Profile {
	return p.documenter
}

// DefaultProfiles returns both agents with their built-in text and model settings
func DefaultProfiles() Profiles {
	return NewProfiles(DefaultModelID, DefaultTemperature, nil)
}

// NewProfiles builds both profiles with the given model defaults, then applies overrides keyed by agent name
func NewProfiles(modelID string, temperature float64, overrides map[string]Override) Profiles {
	if strings.TrimSpace(modelID) == "" {
		modelID = DefaultModelID
	}

	planner := Profile{
		Name: PlannerName,
		Role: "Senior Software Project Planner",
		Goal: "Analyze project requirements and create comprehensive project plans " +
			"including technology stack recommendations, timeline estimates, and development phases.",
		Backstory: "You are an experienced software architect with 15+ years " +
			"of experience in planning and structuring software projects across various domains.",
		ModelID:     modelID,
		Temperature: temperature,
	}

	documenter := Profile{
		Name: DocumenterName,
		Role: "Technical Documentation Specialist",
		Goal: "Generate professional README files, API documentation, " +
			"and project structure documentation that helps developers understand and contribute to projects.",
		Backstory: "You are a technical writer who specializes in creating " +
			"clear, comprehensive documentation for software projects.",
		ModelID:     modelID,
		Temperature: temperature,
	}

	return Profiles{
		planner:    applyOverride(planner, overrides[PlannerName]),
		documenter: applyOverride(documenter, overrides[DocumenterName]),
	}
}

func applyOverride(p Profile, o Override) Profile {
	if o.Model != "" {
		p.ModelID = o.Model
	}
	if o.Temperature != nil {
		p.Temperature = *o.Temperature
	}
	if o.Role != "" {
		p.Role = o.Role
	}
	if o.Goal != "" {
		p.Goal = o.Goal
	}
	if o.Backstory != "" {
		p.Backstory = o.Backstory
	}
	return p
}

// All returns both profiles, planner first
func (p Profiles) All() []Profile {
	return []Profile{p.planner, p.documenter}
}
