package di

import (
	"context"
	"fmt"
	"net/http"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/provider"
	"storybook-ai/backend/internal/service"
	"storybook-ai/backend/pkg/config"
	"storybook-ai/backend/pkg/health"
	"storybook-ai/backend/pkg/logger"
	"storybook-ai/backend/pkg/secrets"
)

// Container holds all the dependencies for the application
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	Secrets      secrets.Manager
	Resolver     *credentials.Resolver
	Providers    provider.Factory
	ImageStore   *service.FileStore
	StoryService *service.StoryService
	ImageService *service.ImageService
	AudioService *service.AudioService
	Health       *health.Checker
}

// Config holds the configuration for the container
type Config struct {
	App     *config.Config
	Logger  *logger.Logger
	Secrets secrets.Manager
	// Providers replaces the real provider clients, e.g. in tests
	Providers  provider.Factory
	HTTPClient *http.Client
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg Config) (*Container, error) {
	if cfg.App == nil {
		cfg.App = config.Get()
	}
	if err := cfg.App.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New(logger.ConfigFrom(cfg.App.Logging.Level, cfg.App.Logging.Format))
	}
	if cfg.Secrets == nil {
		return nil, fmt.Errorf("a secrets manager is required")
	}

	app := cfg.App
	log := cfg.Logger

	policy, err := credentials.ParsePolicy(app.Security.AccessCodePolicy)
	if err != nil {
		return nil, err
	}

	accessCode := cfg.Secrets.GetSecretWithDefault(ctx, secrets.KeyAccessCode, "")
	defaults := credentials.Credentials{
		OpenAIKey:      cfg.Secrets.GetSecretWithDefault(ctx, secrets.KeyOpenAIKey, ""),
		ElevenLabsKey:  cfg.Secrets.GetSecretWithDefault(ctx, secrets.KeyElevenLabsKey, ""),
		ReplicateToken: cfg.Secrets.GetSecretWithDefault(ctx, secrets.KeyReplicateToken, ""),
	}
	resolver := credentials.NewResolver(accessCode, defaults, policy)

	log.Info("Credential resolution configured",
		"policy", string(policy),
		"access_code_enabled", accessCode != "",
		"defaults", defaults,
	)
	if accessCode != "" && !defaults.Complete() {
		log.Warn("Access code is set but default provider credentials are incomplete")
	}

	providers := cfg.Providers
	if providers == nil {
		providers = provider.NewFactory(ProviderSettings(app), cfg.HTTPClient, app.Providers.Timeout)
	}

	store := service.NewFileStore(app.Image.Directory)

	stories := service.NewStoryService(providers, service.FilePrompt(app.Story.PromptPath), service.StoryServiceConfig{
		OutputMode: app.Story.OutputMode,
		Timeout:    app.Providers.Timeout,
	}, log)
	images := service.NewImageService(providers, store, service.ImageServiceConfig{
		ResponseMode: app.Image.ResponseMode,
		Timeout:      app.Providers.Timeout,
	}, log)
	audio := service.NewAudioService(providers, service.AudioServiceConfig{
		DefaultProvider: app.Audio.DefaultProvider,
		Timeout:         app.Providers.Timeout,
	}, log)

	container := &Container{
		Config:       app,
		Logger:       log,
		Secrets:      cfg.Secrets,
		Resolver:     resolver,
		Providers:    providers,
		ImageStore:   store,
		StoryService: stories,
		ImageService: images,
		AudioService: audio,
		Health:       health.NewChecker(log, app.Observability.HealthInterval),
	}
	container.registerHealthChecks()

	return container, nil
}

// ProviderSettings maps application configuration onto provider settings
func ProviderSettings(app *config.Config) provider.Settings {
	return provider.Settings{
		OpenAIBaseURL:          app.Providers.OpenAIBaseURL,
		ElevenLabsBaseURL:      app.Providers.ElevenLabsBaseURL,
		ReplicateBaseURL:       app.Providers.ReplicateBaseURL,
		StoryModel:             app.Story.Model,
		Temperature:            app.Story.Temperature,
		ImageModel:             app.Image.Model,
		StyleSuffix:            app.Image.StyleSuffix,
		PollInterval:           app.Image.PollInterval,
		ElevenLabsVoiceID:      app.Audio.ElevenLabsVoiceID,
		ElevenLabsModel:        app.Audio.ElevenLabsModel,
		ElevenLabsOutputFormat: app.Audio.ElevenLabsOutputFormat,
		OpenAISpeechModel:      app.Audio.OpenAIModel,
	}
}

func (c *Container) registerHealthChecks() {
	prompt := service.FilePrompt(c.Config.Story.PromptPath)
	c.Health.RegisterCriticalCheck("prompt_template", health.FileCheck("Story prompt template", func() error {
		_, err := prompt.Prompt()
		return err
	}))

	if c.Config.Image.ResponseMode == config.ImageModePersist {
		c.Health.RegisterCriticalCheck("image_dir", health.FileCheck("Image directory", c.ImageStore.Writable))
	}

	c.Health.RegisterCheck("default_credentials", func() (health.Status, string, error) {
		if c.Resolver.DefaultsConfigured() {
			return health.StatusUp, "Default provider credentials configured", nil
		}
		return health.StatusDegraded, "Access code disabled or default credentials incomplete; callers must supply keys", nil
	})
}
