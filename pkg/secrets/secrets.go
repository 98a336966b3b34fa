package secrets

import (
	"context"
)

// Secret keys read at startup. Environment fallbacks are the upper-cased
// names, e.g. OPENAI_API_KEY.
const (
	KeyAccessCode     = "story_access_code"
	KeyOpenAIKey      = "openai_api_key"
	KeyElevenLabsKey  = "elevenlabs_api_key"
	KeyReplicateToken = "replicate_api_token"
)

// Manager provides access to secrets from various sources
type Manager interface {
	// GetSecret retrieves a secret by key
	GetSecret(ctx context.Context, key string) (string, error)

	// GetSecretWithDefault retrieves a secret with a default value if not found
	GetSecretWithDefault(ctx context.Context, key, defaultValue string) string
}

// StaticManager serves secrets from a fixed map
type StaticManager map[string]string

// GetSecret implements Manager
func (s StaticManager) GetSecret(_ context.Context, key string) (string, error) {
	if v, ok := s[key]; ok && v != "" {
		return v, nil
	}
	return "", ErrSecretNotFound
}

// GetSecretWithDefault implements Manager
func (s StaticManager) GetSecretWithDefault(ctx context.Context, key, defaultValue string) string {
	if v, err := s.GetSecret(ctx, key); err == nil {
		return v
	}
	return defaultValue
}
