package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"storybook-ai/backend/internal/credentials"

	"github.com/sashabaranov/go-openai"
)

// OpenAI serves story completions and speech through the OpenAI API
type OpenAI struct {
	client   *openai.Client
	settings Settings
	creds    credentials.Credentials
}

// NewOpenAI creates a client authenticated with creds.OpenAIKey
func NewOpenAI(settings Settings, httpClient *http.Client, creds credentials.Credentials) *OpenAI {
	cfg := openai.DefaultConfig(creds.OpenAIKey)
	if settings.OpenAIBaseURL != "" {
		cfg.BaseURL = strings.TrimRight(settings.OpenAIBaseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAI{
		client:   openai.NewClientWithConfig(cfg),
		settings: settings,
		creds:    creds,
	}
}

func (o *OpenAI) messages(req CompletionRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.User,
	})
}

// CompleteStructured implements Completion using a strict JSON schema
// response format
func (o *OpenAI) CompleteStructured(ctx context.Context, req CompletionRequest) ([]byte, error) {
	if req.Schema == nil {
		return nil, errors.New("structured completion requires a schema")
	}
	name := req.SchemaName
	if name == "" {
		name = "response"
	}

	var content string
	err := observe(ctx, NameOpenAI, "completion", func(ctx context.Context) error {
		var err error
		content, err = o.complete(ctx, openai.ChatCompletionRequest{
			Model:       o.settings.StoryModel,
			Messages:    o.messages(req),
			Temperature: float32(o.settings.Temperature),
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:   name,
					Schema: req.Schema,
					Strict: true,
				},
			},
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// CompleteText implements Completion
func (o *OpenAI) CompleteText(ctx context.Context, req CompletionRequest) (string, error) {
	var content string
	err := observe(ctx, NameOpenAI, "completion", func(ctx context.Context) error {
		var err error
		content, err = o.complete(ctx, openai.ChatCompletionRequest{
			Model:       o.settings.StoryModel,
			Messages:    o.messages(req),
			Temperature: float32(o.settings.Temperature),
		})
		return err
	})
	return content, err
}

func (o *OpenAI) complete(ctx context.Context, request openai.ChatCompletionRequest) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", o.wrap("completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", newError(NameOpenAI, "completion", 0, o.creds, errors.New("no choices returned"))
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return "", newError(NameOpenAI, "completion", 0, o.creds, fmt.Errorf("model refused: %s", choice.Message.Refusal))
	}
	if choice.FinishReason == openai.FinishReasonLength {
		return "", newError(NameOpenAI, "completion", 0, o.creds, errors.New("response truncated at the token limit"))
	}
	return choice.Message.Content, nil
}

// Synthesize implements Speech with the OpenAI text-to-speech endpoint
func (o *OpenAI) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	voice := req.Voice
	if voice == "" {
		voice = o.settings.OpenAISpeechVoice
	}

	var audio []byte
	err := observe(ctx, NameOpenAI, "speech", func(ctx context.Context) error {
		resp, err := o.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(o.settings.OpenAISpeechModel),
			Input:          req.Text,
			Voice:          openai.SpeechVoice(voice),
			ResponseFormat: openai.SpeechResponseFormatMp3,
		})
		if err != nil {
			return o.wrap("speech", err)
		}
		defer resp.Close()

		audio, err = io.ReadAll(resp)
		if err != nil {
			return newError(NameOpenAI, "speech", 0, o.creds, err)
		}
		return nil
	})
	return audio, err
}

// wrap converts go-openai errors into *Error
func (o *OpenAI) wrap(operation string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := newError(NameOpenAI, operation, apiErr.HTTPStatusCode, o.creds, err)
		pe.Message = credentials.Redact(apiErr.Message, o.creds)
		return pe
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return newError(NameOpenAI, operation, reqErr.HTTPStatusCode, o.creds, err)
	}
	return newError(NameOpenAI, operation, 0, o.creds, err)
}
