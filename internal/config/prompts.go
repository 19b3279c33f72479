package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds user-supplied prompt templates. Empty fields mean the
// pipeline's built-in defaults apply.
type Prompts struct {
	SystemPrompt string `yaml:"system_prompt"`
	CoTPrompt    string `yaml:"cot_prompt"`
}

// LoadPrompts reads prompt templates from a YAML file. An empty path or a
// missing file yields the zero value, which selects the built-in defaults.
func LoadPrompts(path string) (*Prompts, error) {
	if path == "" {
		return &Prompts{}, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Prompts{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts %s: %w", path, err)
	}

	p := &Prompts{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts %s: %w", path, err)
	}
	return p, nil
}
