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
)

// AudioFilename is the attachment name narration is served under
const AudioFilename = "output_audio.mp3"

// AudioRequest describes one narration
type AudioRequest struct {
	Text     string
	Provider string
	Voice    string
}

// AudioServiceConfig configures the audio service
type AudioServiceConfig struct {
	DefaultProvider string
	Timeout         time.Duration
}

// AudioService turns story text into MP3 narration
type AudioService struct {
	providers provider.Factory
	config    AudioServiceConfig
	log       *logger.Logger
}

// NewAudioService creates an audio service
func NewAudioService(providers provider.Factory, cfg AudioServiceConfig, log *logger.Logger) *AudioService {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = config.AudioProviderElevenLabs
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	return &AudioService{
		providers: providers,
		config:    cfg,
		log:       log.WithComponent("audio"),
	}
}

// GenerateAudio synthesizes req.Text with the requested provider. The
// whole file is buffered before it is returned.
func (s *AudioService) GenerateAudio(ctx context.Context, req AudioRequest, creds credentials.Credentials) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("%w: text", ErrEmptyInput)
	}

	name := strings.ToLower(strings.TrimSpace(req.Provider))
	if name == "" {
		name = s.config.DefaultProvider
	}
	if name == config.AudioProviderOpenAI && req.Voice != "" && !story.Voice(req.Voice).IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVoice, req.Voice)
	}

	speech, err := s.providers.Speech(name, creds)
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, s.config.Timeout)
	defer cancel()

	audio, err := speech.Synthesize(ctx, provider.SpeechRequest{Text: req.Text, Voice: req.Voice})
	if err != nil {
		return nil, err
	}

	s.log.Info("Audio generated", "provider", name, "bytes", len(audio), "credentials", creds)
	return audio, nil
}
