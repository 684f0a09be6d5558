package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TemplateOverride replaces one task's template and expected output hint
type TemplateOverride struct {
	Template       string `yaml:"template"`
	ExpectedOutput string `yaml:"expected_output"`
}

// AgentText replaces an agent's persona text
type AgentText struct {
	Role      string `yaml:"role"`
	Goal      string `yaml:"goal"`
	Backstory string `yaml:"backstory"`
}

// Overrides is the YAML prompt file layout
type Overrides struct {
	Analysis TemplateOverride     `yaml:"analysis"`
	Readme   TemplateOverride     `yaml:"readme"`
	Agents   map[string]AgentText `yaml:"agents"`
}

// LoadOverrides reads a prompt override file. An empty path returns nil.
func LoadOverrides(path string) (*Overrides, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}

	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", path, err)
	}
	return &o, nil
}
