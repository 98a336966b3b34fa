package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Image response modes
const (
	ImageModePersist = "persist"
	ImageModeStream  = "stream"
)

// Story output modes
const (
	StoryModeStructured = "structured"
	StoryModeRaw        = "raw"
)

// Audio providers
const (
	AudioProviderElevenLabs = "elevenlabs"
	AudioProviderOpenAI     = "openai"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server struct {
		Port            string
		Env             string
		Timeout         time.Duration
		ShutdownTimeout time.Duration
		BaseURL         string
	}

	// Security configuration
	Security struct {
		AllowedOrigins   []string
		MaxBodySize      int64
		AccessCodePolicy string
	}

	// Logging configuration
	Logging struct {
		Level  string
		Format string
	}

	// Story generation
	Story struct {
		PromptPath  string
		OutputMode  string
		Model       string
		Temperature float64
	}

	// Image generation
	Image struct {
		ResponseMode string
		Directory    string
		Model        string
		StyleSuffix  string
		PollInterval time.Duration
	}

	// Audio generation
	Audio struct {
		DefaultProvider        string
		ElevenLabsVoiceID      string
		ElevenLabsModel        string
		ElevenLabsOutputFormat string
		OpenAIModel            string
	}

	// Provider endpoints
	Providers struct {
		OpenAIBaseURL     string
		ElevenLabsBaseURL string
		ReplicateBaseURL  string
		Timeout           time.Duration
	}

	// Observability
	Observability struct {
		ServiceName    string
		TracingEnabled bool
		MetricsEnabled bool
		HealthInterval time.Duration
	}

	// OpenAPI request validation
	OpenAPI struct {
		SchemaPath string
	}
}

var (
	instance *Config
	once     sync.Once
)

// New returns the process-wide Config, loading it on first use
func New() *Config {
	once.Do(func() {
		// Load .env file if exists
		godotenv.Load()

		instance = Load()
	})

	return instance
}

// Get returns the singleton Config instance
func Get() *Config {
	if instance == nil {
		return New()
	}
	return instance
}

// Load reads a fresh Config from the environment
func Load() *Config {
	cfg := &Config{}

	// Server config
	cfg.Server.Port = getEnvString("PORT", "8000")
	cfg.Server.Env = getEnvString("APP_ENV", "development")
	cfg.Server.Timeout = getEnvDuration("SERVER_TIMEOUT", 5*time.Minute)
	cfg.Server.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	cfg.Server.BaseURL = getEnvString("BASE_URL", "http://localhost:"+cfg.Server.Port)

	// Security config
	cfg.Security.AllowedOrigins = getEnvStringSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://frontend:3000"})
	cfg.Security.MaxBodySize = getEnvInt64("MAX_BODY_SIZE", 1<<20) // 1MB
	cfg.Security.AccessCodePolicy = getEnvString("ACCESS_CODE_POLICY", "fallback")

	// Logging config
	cfg.Logging.Level = getEnvString("LOG_LEVEL", "info")
	cfg.Logging.Format = getEnvString("LOG_FORMAT", "json")

	// Story config
	cfg.Story.PromptPath = getEnvString("STORY_PROMPT_PATH", "prompts/generator.txt")
	cfg.Story.OutputMode = strings.ToLower(getEnvString("STORY_OUTPUT_MODE", StoryModeStructured))
	cfg.Story.Model = getEnvString("STORY_MODEL", "gpt-4o-2024-08-06")
	cfg.Story.Temperature = getEnvFloat("STORY_TEMPERATURE", 0.8)

	// Image config
	cfg.Image.ResponseMode = strings.ToLower(getEnvString("IMAGE_RESPONSE_MODE", ImageModePersist))
	cfg.Image.Directory = getEnvString("IMAGE_DIR", "images")
	cfg.Image.Model = getEnvString("IMAGE_MODEL", "black-forest-labs/flux-1.1-pro")
	cfg.Image.StyleSuffix = getEnvString("IMAGE_STYLE_SUFFIX", " In the style of children's book illustrator, Richard Scarry.")
	cfg.Image.PollInterval = getEnvDuration("IMAGE_POLL_INTERVAL", time.Second)

	// Audio config
	cfg.Audio.DefaultProvider = strings.ToLower(getEnvString("AUDIO_DEFAULT_PROVIDER", AudioProviderElevenLabs))
	cfg.Audio.ElevenLabsVoiceID = getEnvString("ELEVENLABS_VOICE_ID", "cgSgspJ2msm6clMCkdW9")
	cfg.Audio.ElevenLabsModel = getEnvString("ELEVENLABS_MODEL", "eleven_multilingual_v2")
	cfg.Audio.ElevenLabsOutputFormat = getEnvString("ELEVENLABS_OUTPUT_FORMAT", "mp3_44100_128")
	cfg.Audio.OpenAIModel = getEnvString("OPENAI_TTS_MODEL", "gpt-4o-mini-tts")

	// Provider endpoints
	cfg.Providers.OpenAIBaseURL = getEnvString("OPENAI_BASE_URL", "https://api.openai.com/v1")
	cfg.Providers.ElevenLabsBaseURL = getEnvString("ELEVENLABS_BASE_URL", "https://api.elevenlabs.io")
	cfg.Providers.ReplicateBaseURL = getEnvString("REPLICATE_BASE_URL", "https://api.replicate.com")
	cfg.Providers.Timeout = getEnvDuration("PROVIDER_TIMEOUT", 2*time.Minute)

	// Observability
	cfg.Observability.ServiceName = getEnvString("SERVICE_NAME", "story-backend")
	cfg.Observability.TracingEnabled = getEnvBool("TRACING_ENABLED", false)
	cfg.Observability.MetricsEnabled = getEnvBool("METRICS_ENABLED", true)
	cfg.Observability.HealthInterval = getEnvDuration("HEALTH_CHECK_INTERVAL", 30*time.Second)

	// OpenAPI
	cfg.OpenAPI.SchemaPath = getEnvString("OPENAPI_SCHEMA_PATH", "")

	return cfg
}

// Validate rejects mode settings the service does not support
func (c *Config) Validate() error {
	switch c.Story.OutputMode {
	case StoryModeStructured, StoryModeRaw:
	default:
		return fmt.Errorf("STORY_OUTPUT_MODE must be %q or %q, got %q", StoryModeStructured, StoryModeRaw, c.Story.OutputMode)
	}
	switch c.Image.ResponseMode {
	case ImageModePersist, ImageModeStream:
	default:
		return fmt.Errorf("IMAGE_RESPONSE_MODE must be %q or %q, got %q", ImageModePersist, ImageModeStream, c.Image.ResponseMode)
	}
	switch c.Audio.DefaultProvider {
	case AudioProviderElevenLabs, AudioProviderOpenAI:
	default:
		return fmt.Errorf("AUDIO_DEFAULT_PROVIDER must be %q or %q, got %q", AudioProviderElevenLabs, AudioProviderOpenAI, c.Audio.DefaultProvider)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Helper functions to read environment variables with default values

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}
