package engine

import (
	"github.com/pkg/errors"
)

// Settings carries provider-independent model configuration.
type Settings struct {
	Model        string  `json:"model" yaml:"model"`
	APIKey       string  `json:"-" yaml:"-"`
	SystemPrompt string  `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty"`
	Temperature  float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
}

// Validate checks that the settings can drive a real request.
func (s *Settings) Validate() error {
	if s.Model == "" {
		return errors.New("model name is required")
	}
	if s.APIKey == "" {
		return errors.New("API key is required")
	}
	return nil
}
