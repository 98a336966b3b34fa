package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/provider"
	"storybook-ai/backend/internal/story"
	"storybook-ai/backend/pkg/config"
	"storybook-ai/backend/pkg/logger"

	"github.com/google/uuid"
)

// StoryRequest describes the child a story is written for
type StoryRequest struct {
	ChildName      string
	ChildAge       int
	ChildInterests string
}

// StoryMetadata is returned alongside every generated story
type StoryMetadata struct {
	ChildName      string `json:"child_name"`
	ChildAge       int    `json:"child_age"`
	ChildInterests string `json:"child_interests"`
	Timestamp      string `json:"timestamp"`
	ID             string `json:"id"`
}

// StoryResult holds either a validated story or, in raw mode, the
// completion text as returned
type StoryResult struct {
	Story    *story.Story
	Raw      string
	Metadata StoryMetadata
}

// StoryServiceConfig configures the story service
type StoryServiceConfig struct {
	OutputMode string
	Timeout    time.Duration
}

// StoryService generates and validates stories
type StoryService struct {
	providers provider.Factory
	prompts   PromptSource
	config    StoryServiceConfig
	log       *logger.Logger
	now       func() time.Time
	newID     func() string
}

// NewStoryService creates a story service
func NewStoryService(providers provider.Factory, prompts PromptSource, cfg StoryServiceConfig, log *logger.Logger) *StoryService {
	if cfg.OutputMode == "" {
		cfg.OutputMode = config.StoryModeStructured
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &StoryService{
		providers: providers,
		prompts:   prompts,
		config:    cfg,
		log:       log.WithComponent("story"),
		now:       time.Now,
		newID:     func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// GenerateStory asks the completion provider for a story about the child.
// In structured mode the reply must pass ParseAndValidate.
func (s *StoryService) GenerateStory(ctx context.Context, req StoryRequest, creds credentials.Credentials) (*StoryResult, error) {
	if strings.TrimSpace(req.ChildName) == "" {
		return nil, fmt.Errorf("%w: child name", ErrEmptyInput)
	}

	system, err := s.prompts.Prompt()
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeout)
	defer cancel()

	completion := s.providers.Completion(creds)
	request := provider.CompletionRequest{
		System:     system,
		User:       userPrompt(req.ChildName, req.ChildAge, req.ChildInterests),
		SchemaName: "story",
		Schema:     story.ResponseSchema(),
	}

	result := &StoryResult{Metadata: StoryMetadata{
		ChildName:      req.ChildName,
		ChildAge:       req.ChildAge,
		ChildInterests: req.ChildInterests,
		Timestamp:      s.now().Format(time.RFC3339),
		ID:             s.newID(),
	}}

	if s.config.OutputMode == config.StoryModeRaw {
		text, err := completion.CompleteText(ctx, request)
		if err != nil {
			return nil, err
		}
		result.Raw = text
		s.log.Info("Story generated", "id", result.Metadata.ID, "mode", s.config.OutputMode, "credentials", creds)
		return result, nil
	}

	data, err := completion.CompleteStructured(ctx, request)
	if err != nil {
		return nil, err
	}

	validated, err := story.ParseAndValidate(data)
	if err != nil {
		s.log.Warn("Generated story rejected", "id", result.Metadata.ID, "error", err.Error())
		recordRejection(sourceGenerated, err)
		return nil, fmt.Errorf("%w: %w", ErrGeneratedStoryInvalid, err)
	}
	result.Story = validated

	s.log.Info("Story generated",
		"id", result.Metadata.ID,
		"title", validated.Main.Title,
		"scenes", len(validated.Scenes),
		"credentials", creds,
	)
	return result, nil
}

// ValidateDocument checks a caller-supplied story document. With
// migrateV1 set the document is converted from schema version 1 first;
// current documents pass through migration unchanged.
func (s *StoryService) ValidateDocument(raw []byte, migrateV1 bool) (*story.Story, error) {
	var doc any = raw
	if migrateV1 {
		migrated, err := story.MigrateV1(raw)
		if err != nil {
			recordRejection(sourceSupplied, err)
			return nil, err
		}
		doc = migrated
	}

	validated, err := story.ParseAndValidate(doc)
	if err != nil {
		recordRejection(sourceSupplied, err)
		return nil, err
	}
	return validated, nil
}
