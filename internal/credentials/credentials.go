package credentials

import (
	"log/slog"
	"strings"
)

// Request headers carrying caller-supplied credentials
const (
	HeaderAccessCode     = "X-Access-Code"
	HeaderOpenAIKey      = "X-OpenAI-Key"
	HeaderElevenLabsKey  = "X-ElevenLabs-Key"
	HeaderReplicateToken = "X-Replicate-Token"
)

// Headers lists every credential header, for CORS and documentation
var Headers = []string{HeaderAccessCode, HeaderOpenAIKey, HeaderElevenLabsKey, HeaderReplicateToken}

// Source tells where resolved credentials came from
type Source string

// Credential sources
const (
	SourceAccessCode Source = "access_code"
	SourceCaller     Source = "caller"
)

// visibleSuffix is how many trailing characters Mask leaves readable
const visibleSuffix = 4

// Credentials are the provider keys authorizing one request
type Credentials struct {
	OpenAIKey      string
	ElevenLabsKey  string
	ReplicateToken string
	Source         Source
}

// Complete reports whether all three provider keys are present
func (c Credentials) Complete() bool {
	return c.OpenAIKey != "" && c.ElevenLabsKey != "" && c.ReplicateToken != ""
}

// LogValue renders the credentials with every secret masked
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("source", string(c.Source)),
		slog.String("openai_key", Mask(c.OpenAIKey)),
		slog.String("elevenlabs_key", Mask(c.ElevenLabsKey)),
		slog.String("replicate_token", Mask(c.ReplicateToken)),
	)
}

// String masks secrets so credentials are safe in formatted output
func (c Credentials) String() string {
	return "source=" + string(c.Source) +
		" openai_key=" + Mask(c.OpenAIKey) +
		" elevenlabs_key=" + Mask(c.ElevenLabsKey) +
		" replicate_token=" + Mask(c.ReplicateToken)
}

// Supplied holds the raw values a caller sent with a request
type Supplied struct {
	AccessCode     string
	OpenAIKey      string
	ElevenLabsKey  string
	ReplicateToken string
}

// FromHeaders reads supplied credentials from request headers
func FromHeaders(get func(string) string) Supplied {
	return Supplied{
		AccessCode:     strings.TrimSpace(get(HeaderAccessCode)),
		OpenAIKey:      strings.TrimSpace(get(HeaderOpenAIKey)),
		ElevenLabsKey:  strings.TrimSpace(get(HeaderElevenLabsKey)),
		ReplicateToken: strings.TrimSpace(get(HeaderReplicateToken)),
	}
}

// LogValue renders the supplied values with every secret masked
func (s Supplied) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("access_code", Mask(s.AccessCode)),
		slog.String("openai_key", Mask(s.OpenAIKey)),
		slog.String("elevenlabs_key", Mask(s.ElevenLabsKey)),
		slog.String("replicate_token", Mask(s.ReplicateToken)),
	)
}

// Mask hides all but the last few characters of a secret. Secrets too
// short to keep a suffix private are hidden entirely.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= visibleSuffix*2 {
		return "****"
	}
	return "****" + secret[len(secret)-visibleSuffix:]
}

// Redact replaces every secret of creds found in text with its masked form
func Redact(text string, creds Credentials) string {
	for _, secret := range []string{creds.OpenAIKey, creds.ElevenLabsKey, creds.ReplicateToken} {
		if secret == "" {
			continue
		}
		text = strings.ReplaceAll(text, secret, Mask(secret))
	}
	return text
}
