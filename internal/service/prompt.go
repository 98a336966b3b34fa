package service

import (
	"fmt"
	"os"
	"strings"
)

// PromptSource supplies the system prompt for story generation
type PromptSource interface {
	Prompt() (string, error)
}

// FilePrompt reads the prompt template from disk on every call, so edits
// take effect without a restart
type FilePrompt string

// Prompt implements PromptSource
func (p FilePrompt) Prompt() (string, error) {
	data, err := os.ReadFile(string(p))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPromptUnavailable, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrPromptUnavailable, string(p))
	}
	return text, nil
}

// Path returns the template location
func (p FilePrompt) Path() string {
	return string(p)
}

// userPrompt is the per-request instruction sent after the system prompt
func userPrompt(name string, age int, interests string) string {
	return fmt.Sprintf("Generate a story for a %d year old child named %s who is interested in %s.", age, name, interests)
}
