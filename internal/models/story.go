package models

import (
	"storybook-ai/backend/internal/service"
	"storybook-ai/backend/internal/story"
)

// GenerateStoryRequest is the body of POST /api/story/generate
type GenerateStoryRequest struct {
	ChildName      string `json:"child_name" binding:"required,max=100"`
	ChildAge       Age    `json:"child_age" binding:"required,min=1,max=18"`
	ChildInterests string `json:"child_interests" binding:"required,max=500"`
}

// ToService converts the request into the service input
func (r GenerateStoryRequest) ToService() service.StoryRequest {
	return service.StoryRequest{
		ChildName:      r.ChildName,
		ChildAge:       int(r.ChildAge),
		ChildInterests: r.ChildInterests,
	}
}

// GenerateStoryResponse carries a validated story, or the raw completion
// text when the service runs in raw mode
type GenerateStoryResponse struct {
	Story    any                   `json:"story"`
	Metadata service.StoryMetadata `json:"metadata"`
}

// NewGenerateStoryResponse builds the response for a generation result
func NewGenerateStoryResponse(res *service.StoryResult) GenerateStoryResponse {
	resp := GenerateStoryResponse{Metadata: res.Metadata}
	if res.Story != nil {
		resp.Story = res.Story
	} else {
		resp.Story = res.Raw
	}
	return resp
}

// GenerateImageRequest is the body of POST /api/story/generate-image
type GenerateImageRequest struct {
	Prompt       string `json:"prompt" binding:"required,max=2000"`
	AspectRatio  string `json:"aspect_ratio" binding:"omitempty,aspect_ratio"`
	OutputFormat string `json:"output_format" binding:"omitempty,oneof=png jpg webp"`
	Seed         *int   `json:"seed"`
}

// ToService converts the request into the service input, applying defaults
func (r GenerateImageRequest) ToService() service.ImageRequest {
	seed := service.DefaultSeed
	if r.Seed != nil {
		seed = *r.Seed
	}
	return service.ImageRequest{
		Prompt:       r.Prompt,
		AspectRatio:  r.AspectRatio,
		OutputFormat: r.OutputFormat,
		Seed:         seed,
	}
}

// GenerateImageResponse is returned in persist mode
type GenerateImageResponse struct {
	ImagePath string `json:"image_path"`
}

// GenerateAudioRequest is the body of POST /api/story/generate-audio
type GenerateAudioRequest struct {
	Text     string `json:"text" binding:"required,max=5000"`
	Provider string `json:"provider"`
	Voice    string `json:"voice"`
}

// ToService converts the request into the service input
func (r GenerateAudioRequest) ToService() service.AudioRequest {
	return service.AudioRequest{Text: r.Text, Provider: r.Provider, Voice: r.Voice}
}

// ValidateStoryResponse is returned for a story that passed validation
type ValidateStoryResponse struct {
	Valid bool         `json:"valid"`
	Story *story.Story `json:"story"`
}
