package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/provider"
	"storybook-ai/backend/pkg/config"
	"storybook-ai/backend/pkg/logger"
)

// Image request defaults
const (
	DefaultAspectRatio  = "16:9"
	DefaultOutputFormat = "png"
	DefaultSeed         = 123457
)

// ImageRequest describes one illustration
type ImageRequest struct {
	Prompt       string
	AspectRatio  string
	OutputFormat string
	Seed         int
}

// ImageResult is a generated illustration. Path is set in persist mode,
// Data and ContentType in stream mode.
type ImageResult struct {
	Path        string
	Data        []byte
	ContentType string
	Filename    string
}

// ImageServiceConfig configures the image service
type ImageServiceConfig struct {
	ResponseMode string
	Timeout      time.Duration
}

// ImageService generates illustrations and either stores or streams them
type ImageService struct {
	providers provider.Factory
	store     ImageStore
	config    ImageServiceConfig
	log       *logger.Logger
}

// NewImageService creates an image service. store may be nil in stream mode.
func NewImageService(providers provider.Factory, store ImageStore, cfg ImageServiceConfig, log *logger.Logger) *ImageService {
	if cfg.ResponseMode == "" {
		cfg.ResponseMode = config.ImageModePersist
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &ImageService{
		providers: providers,
		store:     store,
		config:    cfg,
		log:       log.WithComponent("image"),
	}
}

// Mode returns the configured response mode
func (s *ImageService) Mode() string {
	return s.config.ResponseMode
}

// GenerateImage creates an illustration for prompt
func (s *ImageService) GenerateImage(ctx context.Context, req ImageRequest, creds credentials.Credentials) (*ImageResult, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("%w: prompt", ErrEmptyInput)
	}
	if req.AspectRatio == "" {
		req.AspectRatio = DefaultAspectRatio
	}
	if req.OutputFormat == "" {
		req.OutputFormat = DefaultOutputFormat
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeout)
	defer cancel()

	img, err := s.providers.Image(creds).GenerateImage(ctx, provider.ImageRequest{
		Prompt:       req.Prompt,
		AspectRatio:  req.AspectRatio,
		OutputFormat: req.OutputFormat,
		Seed:         req.Seed,
	})
	if err != nil {
		return nil, err
	}

	if s.config.ResponseMode == config.ImageModeStream {
		s.log.Info("Image generated", "mode", s.config.ResponseMode, "bytes", len(img.Data), "credentials", creds)
		return &ImageResult{
			Data:        img.Data,
			ContentType: img.ContentType,
			Filename:    "image." + req.OutputFormat,
		}, nil
	}

	if s.store == nil {
		return nil, fmt.Errorf("%w: no image store configured", ErrStorage)
	}
	path, err := s.store.Save(img.Data, req.OutputFormat)
	if err != nil {
		s.log.LogError(err, "Failed to store image")
		return nil, err
	}

	s.log.Info("Image generated", "mode", s.config.ResponseMode, "path", path, "credentials", creds)
	return &ImageResult{Path: path, ContentType: img.ContentType}, nil
}
