package credentials

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = Credentials{
	OpenAIKey:      "sk-server-openai-0001",
	ElevenLabsKey:  "el-server-key-0002",
	ReplicateToken: "r8_server_token_0003",
}

func callerKeys() Supplied {
	return Supplied{
		OpenAIKey:      "sk-caller-openai-aaaa",
		ElevenLabsKey:  "el-caller-key-bbbb",
		ReplicateToken: "r8_caller_token_cccc",
	}
}

func TestResolve_CorrectAccessCodeUsesDefaults(t *testing.T) {
	for _, policy := range []Policy{PolicyFallback, PolicyStrict} {
		r := NewResolver("open-sesame", defaults, policy)

		creds, err := r.Resolve(Supplied{AccessCode: "open-sesame"})
		require.NoError(t, err)
		assert.Equal(t, defaults.OpenAIKey, creds.OpenAIKey)
		assert.Equal(t, defaults.ElevenLabsKey, creds.ElevenLabsKey)
		assert.Equal(t, defaults.ReplicateToken, creds.ReplicateToken)
		assert.Equal(t, SourceAccessCode, creds.Source)
	}
}

func TestResolve_CorrectAccessCodeIgnoresCallerKeys(t *testing.T) {
	r := NewResolver("open-sesame", defaults, PolicyFallback)
	s := callerKeys()
	s.AccessCode = "open-sesame"

	creds, err := r.Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, defaults.OpenAIKey, creds.OpenAIKey)
}

func TestResolve_CallerKeysUsedVerbatim(t *testing.T) {
	tests := []struct {
		name       string
		accessCode string
	}{
		{"absent code", ""},
		{"wrong code", "let-me-in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver("open-sesame", defaults, PolicyFallback)
			s := callerKeys()
			s.AccessCode = tt.accessCode

			creds, err := r.Resolve(s)
			require.NoError(t, err)
			assert.Equal(t, Credentials{
				OpenAIKey:      s.OpenAIKey,
				ElevenLabsKey:  s.ElevenLabsKey,
				ReplicateToken: s.ReplicateToken,
				Source:         SourceCaller,
			}, creds)
		})
	}
}

func TestResolve_MissingCallerKeysIsUnauthorized(t *testing.T) {
	r := NewResolver("open-sesame", defaults, PolicyFallback)

	for _, drop := range []func(*Supplied){
		func(s *Supplied) { s.OpenAIKey = "" },
		func(s *Supplied) { s.ElevenLabsKey = "" },
		func(s *Supplied) { s.ReplicateToken = "" },
		func(s *Supplied) { *s = Supplied{} },
	} {
		for _, code := range []string{"", "wrong"} {
			s := callerKeys()
			drop(&s)
			s.AccessCode = code

			_, err := r.Resolve(s)
			assert.ErrorIs(t, err, ErrUnauthorized)
		}
	}
}

func TestResolve_StrictPolicyRejectsWrongCode(t *testing.T) {
	r := NewResolver("open-sesame", defaults, PolicyStrict)
	s := callerKeys()
	s.AccessCode = "let-me-in"

	_, err := r.Resolve(s)
	assert.ErrorIs(t, err, ErrUnauthorized)

	s.AccessCode = ""
	creds, err := r.Resolve(s)
	require.NoError(t, err)
	assert.Equal(t, SourceCaller, creds.Source)
}

func TestResolve_EmptyConfiguredCodeNeverMatches(t *testing.T) {
	r := NewResolver("", defaults, PolicyFallback)

	_, err := r.Resolve(Supplied{AccessCode: ""})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, r.DefaultsConfigured())
}

func TestResolve_IncompleteDefaults(t *testing.T) {
	r := NewResolver("open-sesame", Credentials{OpenAIKey: "sk-only"}, PolicyFallback)

	_, err := r.Resolve(Supplied{AccessCode: "open-sesame"})
	assert.ErrorIs(t, err, ErrDefaultsIncomplete)
	assert.False(t, r.DefaultsConfigured())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyFallback, p)

	p, err = ParsePolicy(" Strict ")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}

func TestFromHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderAccessCode, " code ")
	h.Set(HeaderOpenAIKey, "sk-1")
	h.Set(HeaderElevenLabsKey, "el-2")
	h.Set(HeaderReplicateToken, "r8-3")

	assert.Equal(t, Supplied{
		AccessCode:     "code",
		OpenAIKey:      "sk-1",
		ElevenLabsKey:  "el-2",
		ReplicateToken: "r8-3",
	}, FromHeaders(h.Get))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "****", Mask("short"))
	assert.Equal(t, "****0001", Mask("sk-server-openai-0001"))
}

func TestRedact(t *testing.T) {
	msg := "provider rejected key sk-server-openai-0001 for r8_server_token_0003"

	out := Redact(msg, defaults)
	assert.NotContains(t, out, defaults.OpenAIKey)
	assert.NotContains(t, out, defaults.ReplicateToken)
	assert.Contains(t, out, "****0001")
	assert.Contains(t, out, "****0003")
}

func TestLogValueNeverLeaksSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	s := callerKeys()
	s.AccessCode = "open-sesame-1234"
	log.Info("resolving", "supplied", s, "credentials", defaults)

	out := buf.String()
	for _, secret := range []string{
		s.AccessCode, s.OpenAIKey, s.ElevenLabsKey, s.ReplicateToken,
		defaults.OpenAIKey, defaults.ElevenLabsKey, defaults.ReplicateToken,
	} {
		assert.NotContains(t, out, secret)
	}
	assert.Contains(t, out, "****1234")
	assert.NotContains(t, defaults.String(), defaults.OpenAIKey)
}
