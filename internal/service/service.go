package service

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPromptUnavailable is returned when the story prompt template cannot be read
	ErrPromptUnavailable = errors.New("story prompt template unavailable")
	// ErrGeneratedStoryInvalid wraps the validation error of a story the
	// completion provider returned
	ErrGeneratedStoryInvalid = errors.New("generated story failed validation")
	// ErrStorage is returned when a generated file cannot be written
	ErrStorage = errors.New("image storage failed")
	// ErrInvalidVoice is returned for a speech voice the provider does not offer
	ErrInvalidVoice = errors.New("invalid voice")
	// ErrEmptyInput is returned when the text to work from is blank
	ErrEmptyInput = errors.New("input is empty")
)

// withTimeout bounds a provider call when a timeout is configured
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
