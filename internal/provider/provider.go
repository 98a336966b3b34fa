package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storybook-ai/backend/internal/credentials"
)

// Provider names used in errors, logs and metrics
const (
	NameOpenAI     = "openai"
	NameElevenLabs = "elevenlabs"
	NameReplicate  = "replicate"
)

// ErrUnknownProvider is returned for a speech provider name that is not supported
var ErrUnknownProvider = errors.New("unknown provider")

// CompletionRequest is one chat completion call
type CompletionRequest struct {
	System     string
	User       string
	SchemaName string
	Schema     json.Marshaler
}

// Completion produces story text from a language model
type Completion interface {
	// CompleteStructured returns a JSON document conforming to req.Schema
	CompleteStructured(ctx context.Context, req CompletionRequest) ([]byte, error)
	// CompleteText returns the model's reply without a response schema
	CompleteText(ctx context.Context, req CompletionRequest) (string, error)
}

// ImageRequest describes one illustration
type ImageRequest struct {
	Prompt       string
	AspectRatio  string
	OutputFormat string
	Seed         int
}

// Image is a generated picture
type Image struct {
	Data        []byte
	ContentType string
}

// ImageGenerator produces illustrations
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// SpeechRequest describes one narration
type SpeechRequest struct {
	Text  string
	Voice string
}

// Speech produces MP3 narration
type Speech interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// Factory builds provider clients bound to one request's credentials
type Factory interface {
	Completion(creds credentials.Credentials) Completion
	Image(creds credentials.Credentials) ImageGenerator
	Speech(name string, creds credentials.Credentials) (Speech, error)
}

// Settings configures the default clients
type Settings struct {
	OpenAIBaseURL     string
	ElevenLabsBaseURL string
	ReplicateBaseURL  string

	StoryModel  string
	Temperature float64

	ImageModel   string
	StyleSuffix  string
	PollInterval time.Duration

	ElevenLabsVoiceID      string
	ElevenLabsModel        string
	ElevenLabsOutputFormat string
	OpenAISpeechModel      string
	OpenAISpeechVoice      string
}

// DefaultFactory creates the real OpenAI, ElevenLabs and Replicate clients
type DefaultFactory struct {
	settings   Settings
	httpClient *http.Client
}

// NewFactory returns a factory whose clients share httpClient.
// A nil client gets one with the given timeout.
func NewFactory(settings Settings, httpClient *http.Client, timeout time.Duration) *DefaultFactory {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if settings.PollInterval <= 0 {
		settings.PollInterval = time.Second
	}
	if settings.OpenAISpeechVoice == "" {
		settings.OpenAISpeechVoice = "nova"
	}
	return &DefaultFactory{settings: settings, httpClient: httpClient}
}

// Completion implements Factory
func (f *DefaultFactory) Completion(creds credentials.Credentials) Completion {
	return NewOpenAI(f.settings, f.httpClient, creds)
}

// Image implements Factory
func (f *DefaultFactory) Image(creds credentials.Credentials) ImageGenerator {
	return NewReplicate(f.settings, f.httpClient, creds)
}

// Speech implements Factory
func (f *DefaultFactory) Speech(name string, creds credentials.Credentials) (Speech, error) {
	switch name {
	case NameElevenLabs:
		return NewElevenLabs(f.settings, f.httpClient, creds), nil
	case NameOpenAI:
		return NewOpenAI(f.settings, f.httpClient, creds), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
}
