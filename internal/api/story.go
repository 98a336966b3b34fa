package api

import (
	"context"
	"fmt"
	"net/http"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/models"
	"storybook-ai/backend/internal/service"
	"storybook-ai/backend/internal/story"
	"storybook-ai/backend/pkg/config"
	apperrors "storybook-ai/backend/pkg/errors"
	"storybook-ai/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// StoryGenerator writes and checks stories
type StoryGenerator interface {
	GenerateStory(ctx context.Context, req service.StoryRequest, creds credentials.Credentials) (*service.StoryResult, error)
	ValidateDocument(raw []byte, migrateV1 bool) (*story.Story, error)
}

// ImageGenerator produces illustrations
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req service.ImageRequest, creds credentials.Credentials) (*service.ImageResult, error)
	Mode() string
}

// AudioGenerator produces narration
type AudioGenerator interface {
	GenerateAudio(ctx context.Context, req service.AudioRequest, creds credentials.Credentials) ([]byte, error)
}

// StoryHandler serves the story generation endpoints
type StoryHandler struct {
	stories StoryGenerator
	images  ImageGenerator
	audio   AudioGenerator
}

// NewStoryHandler creates a new story handler
func NewStoryHandler(stories StoryGenerator, images ImageGenerator, audio AudioGenerator) *StoryHandler {
	return &StoryHandler{stories: stories, images: images, audio: audio}
}

// RegisterRoutes mounts the story endpoints on group. Generation routes
// run behind guards, which must include RequireCredentials; validation
// needs no provider access.
func (h *StoryHandler) RegisterRoutes(group *gin.RouterGroup, guards ...gin.HandlerFunc) {
	group.POST("/validate", h.ValidateStory)

	generation := group.Group("")
	generation.Use(guards...)
	{
		generation.POST("/generate", h.GenerateStory)
		generation.POST("/generate-image", h.GenerateImage)
		generation.POST("/generate-audio", h.GenerateAudio)
	}
}

// GenerateStory handles POST /generate
func (h *StoryHandler) GenerateStory(c *gin.Context) {
	var req models.GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err))
		return
	}

	creds, ok := h.credentials(c)
	if !ok {
		return
	}

	res, err := h.stories.GenerateStory(c.Request.Context(), req.ToService(), creds)
	if err != nil {
		_ = c.Error(toAppError(err))
		return
	}

	c.JSON(http.StatusOK, models.NewGenerateStoryResponse(res))
}

// GenerateImage handles POST /generate-image
func (h *StoryHandler) GenerateImage(c *gin.Context) {
	var req models.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err))
		return
	}

	creds, ok := h.credentials(c)
	if !ok {
		return
	}

	res, err := h.images.GenerateImage(c.Request.Context(), req.ToService(), creds)
	if err != nil {
		_ = c.Error(toAppError(err))
		return
	}

	if h.images.Mode() == config.ImageModeStream {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", res.Filename))
		c.Data(http.StatusOK, res.ContentType, res.Data)
		return
	}

	c.JSON(http.StatusOK, models.GenerateImageResponse{ImagePath: res.Path})
}

// GenerateAudio handles POST /generate-audio
func (h *StoryHandler) GenerateAudio(c *gin.Context) {
	var req models.GenerateAudioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindingError(err))
		return
	}

	creds, ok := h.credentials(c)
	if !ok {
		return
	}

	audio, err := h.audio.GenerateAudio(c.Request.Context(), req.ToService(), creds)
	if err != nil {
		_ = c.Error(toAppError(err))
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+service.AudioFilename)
	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// ValidateStory handles POST /validate. ?migrate=v1 converts a schema
// version 1 document before validation.
func (h *StoryHandler) ValidateStory(c *gin.Context) {
	migrate := c.Query("migrate")
	if migrate != "" && migrate != "v1" {
		_ = c.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidRequest,
			fmt.Sprintf("unsupported migration %q", migrate)))
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		_ = c.Error(bindingError(err))
		return
	}

	s, err := h.stories.ValidateDocument(raw, migrate == "v1")
	if err != nil {
		logger.FromContext(c).Info("Story document rejected", "error", err.Error())
		_ = c.Error(toAppError(err))
		return
	}

	c.JSON(http.StatusOK, models.ValidateStoryResponse{Valid: true, Story: s})
}

func (h *StoryHandler) credentials(c *gin.Context) (credentials.Credentials, bool) {
	creds, ok := CredentialsFrom(c)
	if !ok {
		_ = c.Error(toAppError(credentials.ErrUnauthorized))
		return credentials.Credentials{}, false
	}
	return creds, true
}
