package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"storybook-ai/backend/internal/credentials"
)

// ElevenLabs synthesizes narration with the ElevenLabs text-to-speech API
type ElevenLabs struct {
	httpClient *http.Client
	settings   Settings
	creds      credentials.Credentials
}

// NewElevenLabs creates a client authenticated with creds.ElevenLabsKey
func NewElevenLabs(settings Settings, httpClient *http.Client, creds credentials.Credentials) *ElevenLabs {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ElevenLabs{httpClient: httpClient, settings: settings, creds: creds}
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize implements Speech. Voice overrides the configured voice id.
func (e *ElevenLabs) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	voiceID := req.Voice
	if voiceID == "" {
		voiceID = e.settings.ElevenLabsVoiceID
	}

	var audio []byte
	err := observe(ctx, NameElevenLabs, "speech", func(ctx context.Context) error {
		var err error
		audio, err = e.synthesize(ctx, voiceID, req.Text)
		return err
	})
	return audio, err
}

func (e *ElevenLabs) synthesize(ctx context.Context, voiceID, text string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s",
		strings.TrimRight(e.settings.ElevenLabsBaseURL, "/"), url.PathEscape(voiceID))
	if e.settings.ElevenLabsOutputFormat != "" {
		endpoint += "?output_format=" + url.QueryEscape(e.settings.ElevenLabsOutputFormat)
	}

	jsonData, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: e.settings.ElevenLabsModel})
	if err != nil {
		return nil, fmt.Errorf("error marshaling TTS request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, newError(NameElevenLabs, "speech", 0, e.creds, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.creds.ElevenLabsKey)
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, newError(NameElevenLabs, "speech", 0, e.creds, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, statusError(NameElevenLabs, "speech", resp.StatusCode, bodyBytes, e.creds)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(NameElevenLabs, "speech", 0, e.creds, err)
	}

	return audioData, nil
}
