package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storybook-ai/backend/internal/credentials"
	"storybook-ai/backend/internal/mocks"
	"storybook-ai/backend/internal/provider"
	"storybook-ai/backend/internal/story"
	"storybook-ai/backend/pkg/config"
	"storybook-ai/backend/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCreds = credentials.Credentials{
	OpenAIKey:      "sk-service-test-1111",
	ElevenLabsKey:  "el-service-test-2222",
	ReplicateToken: "r8-service-test-3333",
	Source:         credentials.SourceAccessCode,
}

type staticPrompt string

func (p staticPrompt) Prompt() (string, error) { return string(p), nil }

type failingPrompt struct{}

func (failingPrompt) Prompt() (string, error) {
	return "", ErrPromptUnavailable
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newStoryService(t *testing.T, completion *mocks.MockCompletion, mode string) *StoryService {
	factory := mocks.NewMockFactory(t)
	if completion != nil {
		factory.On("Completion", testCreds).Return(completion)
	}
	svc := NewStoryService(factory, staticPrompt("You write stories."), StoryServiceConfig{OutputMode: mode, Timeout: time.Second}, logger.Discard())
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }
	svc.newID = func() string { return "0123456789abcdef0123456789abcdef" }
	return svc
}

func TestStoryService_GenerateStructured(t *testing.T) {
	completion := mocks.NewMockCompletion(t)
	completion.On("CompleteStructured", mock.Anything, mock.MatchedBy(func(req provider.CompletionRequest) bool {
		return req.System == "You write stories." &&
			req.User == "Generate a story for a 7 year old child named Maya who is interested in dinosaurs." &&
			req.SchemaName == "story" &&
			req.Schema != nil
	})).Return(readFixture(t, "story.json"), nil)

	svc := newStoryService(t, completion, config.StoryModeStructured)
	res, err := svc.GenerateStory(context.Background(), StoryRequest{ChildName: "Maya", ChildAge: 7, ChildInterests: "dinosaurs"}, testCreds)
	require.NoError(t, err)

	require.NotNil(t, res.Story)
	assert.Equal(t, "Maya and the Dinosaur Parade", res.Story.Main.Title)
	assert.Empty(t, res.Raw)
	assert.Equal(t, StoryMetadata{
		ChildName:      "Maya",
		ChildAge:       7,
		ChildInterests: "dinosaurs",
		Timestamp:      "2024-05-01T09:30:00Z",
		ID:             "0123456789abcdef0123456789abcdef",
	}, res.Metadata)
}

func TestStoryService_RejectsInvalidGeneratedStory(t *testing.T) {
	doc := strings.Replace(string(readFixture(t, "story.json")), `"voice": "nova"`, `"voice": "alloy"`, 1)

	completion := mocks.NewMockCompletion(t)
	completion.On("CompleteStructured", mock.Anything, mock.Anything).Return([]byte(doc), nil)

	rejected := storiesRejected.WithLabelValues(sourceGenerated, string(story.StageCast))
	before := testutil.ToFloat64(rejected)

	svc := newStoryService(t, completion, config.StoryModeStructured)
	_, err := svc.GenerateStory(context.Background(), StoryRequest{ChildName: "Maya", ChildAge: 7, ChildInterests: "dinosaurs"}, testCreds)

	require.ErrorIs(t, err, ErrGeneratedStoryInvalid)
	verr, ok := story.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has(story.RuleStorytellerVoice))
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}

func TestStoryService_RawModeSkipsValidation(t *testing.T) {
	completion := mocks.NewMockCompletion(t)
	completion.On("CompleteText", mock.Anything, mock.Anything).Return("not even json", nil)

	svc := newStoryService(t, completion, config.StoryModeRaw)
	res, err := svc.GenerateStory(context.Background(), StoryRequest{ChildName: "Maya", ChildAge: 7, ChildInterests: "dinosaurs"}, testCreds)
	require.NoError(t, err)
	assert.Nil(t, res.Story)
	assert.Equal(t, "not even json", res.Raw)
}

func TestStoryService_ProviderErrorPassesThrough(t *testing.T) {
	providerErr := &provider.Error{Provider: provider.NameOpenAI, Operation: "completion", StatusCode: 429, Message: "rate limited"}
	completion := mocks.NewMockCompletion(t)
	completion.On("CompleteStructured", mock.Anything, mock.Anything).Return(nil, providerErr)

	svc := newStoryService(t, completion, config.StoryModeStructured)
	_, err := svc.GenerateStory(context.Background(), StoryRequest{ChildName: "Maya", ChildAge: 7}, testCreds)

	var pe *provider.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 429, pe.StatusCode)
}

func TestStoryService_PromptUnavailable(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	svc := NewStoryService(factory, failingPrompt{}, StoryServiceConfig{}, logger.Discard())

	_, err := svc.GenerateStory(context.Background(), StoryRequest{ChildName: "Maya", ChildAge: 7}, testCreds)
	assert.ErrorIs(t, err, ErrPromptUnavailable)
}

func TestStoryService_ValidateDocument(t *testing.T) {
	svc := newStoryService(t, nil, config.StoryModeStructured)

	s, err := svc.ValidateDocument(readFixture(t, "story.json"), false)
	require.NoError(t, err)
	assert.Len(t, s.Characters, 3)

	_, err = svc.ValidateDocument(readFixture(t, "story_v1.json"), false)
	verr, ok := story.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has(story.RuleStructure))

	s, err = svc.ValidateDocument(readFixture(t, "story_v1.json"), true)
	require.NoError(t, err)
	events := s.Scenes[0].OrderedEvents()
	assert.Equal(t, "Maya", events[1].Character)
	assert.Equal(t, story.VoiceShimmer, events[1].Voice)
	assert.Equal(t, "Look, a fossil!", events[1].Content)

	s, err = svc.ValidateDocument(readFixture(t, "story.json"), true)
	require.NoError(t, err)
	assert.Equal(t, "parade", s.Scenes[1].ID)
}

func TestStoryService_ValidateDocumentRejectsInputEvents(t *testing.T) {
	svc := newStoryService(t, nil, config.StoryModeStructured)
	doc := strings.Replace(string(readFixture(t, "story_v1.json")), `"type": "speak"`, `"type": "input"`, 1)

	_, err := svc.ValidateDocument([]byte(doc), true)
	assert.ErrorIs(t, err, story.ErrUnsupportedEventType)
}

func TestFilePrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generator.txt")

	_, err := FilePrompt(path).Prompt()
	assert.ErrorIs(t, err, ErrPromptUnavailable)

	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))
	_, err = FilePrompt(path).Prompt()
	assert.ErrorIs(t, err, ErrPromptUnavailable)

	require.NoError(t, os.WriteFile(path, []byte("first version\n"), 0o644))
	text, err := FilePrompt(path).Prompt()
	require.NoError(t, err)
	assert.Equal(t, "first version", text)

	require.NoError(t, os.WriteFile(path, []byte("second version"), 0o644))
	text, err = FilePrompt(path).Prompt()
	require.NoError(t, err)
	assert.Equal(t, "second version", text)
}

func TestImageService_PersistMode(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "images"))
	store.now = func() time.Time { return time.UnixMilli(1714555800123) }

	gen := mocks.NewMockImageGenerator(t)
	gen.On("GenerateImage", mock.Anything, provider.ImageRequest{
		Prompt: "a friendly dragon", AspectRatio: DefaultAspectRatio, OutputFormat: DefaultOutputFormat, Seed: DefaultSeed,
	}).Return(&provider.Image{Data: []byte("PNG"), ContentType: "image/png"}, nil)

	factory := mocks.NewMockFactory(t)
	factory.On("Image", testCreds).Return(gen)

	svc := NewImageService(factory, store, ImageServiceConfig{ResponseMode: config.ImageModePersist}, logger.Discard())
	res, err := svc.GenerateImage(context.Background(), ImageRequest{Prompt: "a friendly dragon", Seed: DefaultSeed}, testCreds)
	require.NoError(t, err)

	assert.Equal(t, "images/1714555800123.png", res.Path)
	assert.Nil(t, res.Data)

	data, err := os.ReadFile(filepath.Join(dir, "images", "1714555800123.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG"), data)
}

func TestImageService_StreamMode(t *testing.T) {
	gen := mocks.NewMockImageGenerator(t)
	gen.On("GenerateImage", mock.Anything, mock.Anything).Return(&provider.Image{Data: []byte("WEBP"), ContentType: "image/webp"}, nil)

	factory := mocks.NewMockFactory(t)
	factory.On("Image", testCreds).Return(gen)

	svc := NewImageService(factory, nil, ImageServiceConfig{ResponseMode: config.ImageModeStream}, logger.Discard())
	res, err := svc.GenerateImage(context.Background(), ImageRequest{Prompt: "p", OutputFormat: "webp"}, testCreds)
	require.NoError(t, err)

	assert.Empty(t, res.Path)
	assert.Equal(t, []byte("WEBP"), res.Data)
	assert.Equal(t, "image/webp", res.ContentType)
	assert.Equal(t, "image.webp", res.Filename)
}

type brokenStore struct{}

func (brokenStore) Save([]byte, string) (string, error) {
	return "", errors.Join(ErrStorage, os.ErrPermission)
}

func TestImageService_StorageFailure(t *testing.T) {
	gen := mocks.NewMockImageGenerator(t)
	gen.On("GenerateImage", mock.Anything, mock.Anything).Return(&provider.Image{Data: []byte("PNG")}, nil)

	factory := mocks.NewMockFactory(t)
	factory.On("Image", testCreds).Return(gen)

	svc := NewImageService(factory, brokenStore{}, ImageServiceConfig{}, logger.Discard())
	_, err := svc.GenerateImage(context.Background(), ImageRequest{Prompt: "p"}, testCreds)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestImageService_EmptyPrompt(t *testing.T) {
	svc := NewImageService(mocks.NewMockFactory(t), nil, ImageServiceConfig{}, logger.Discard())
	_, err := svc.GenerateImage(context.Background(), ImageRequest{Prompt: "  "}, testCreds)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFileStore_Writable(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "images"))
	assert.NoError(t, store.Writable())
}

func TestAudioService_DefaultProvider(t *testing.T) {
	speech := mocks.NewMockSpeech(t)
	speech.On("Synthesize", mock.Anything, provider.SpeechRequest{Text: "Once upon a time"}).Return([]byte("ID3"), nil)

	factory := mocks.NewMockFactory(t)
	factory.On("Speech", config.AudioProviderElevenLabs, testCreds).Return(speech, nil)

	svc := NewAudioService(factory, AudioServiceConfig{}, logger.Discard())
	audio, err := svc.GenerateAudio(context.Background(), AudioRequest{Text: "Once upon a time"}, testCreds)
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3"), audio)
}

func TestAudioService_OpenAIVoice(t *testing.T) {
	speech := mocks.NewMockSpeech(t)
	speech.On("Synthesize", mock.Anything, provider.SpeechRequest{Text: "Hi", Voice: "coral"}).Return([]byte("ID3"), nil)

	factory := mocks.NewMockFactory(t)
	factory.On("Speech", config.AudioProviderOpenAI, testCreds).Return(speech, nil)

	svc := NewAudioService(factory, AudioServiceConfig{}, logger.Discard())
	_, err := svc.GenerateAudio(context.Background(), AudioRequest{Text: "Hi", Provider: "OpenAI", Voice: "coral"}, testCreds)
	require.NoError(t, err)

	_, err = svc.GenerateAudio(context.Background(), AudioRequest{Text: "Hi", Provider: "openai", Voice: "robot"}, testCreds)
	assert.ErrorIs(t, err, ErrInvalidVoice)
}

func TestAudioService_UnknownProvider(t *testing.T) {
	factory := mocks.NewMockFactory(t)
	factory.On("Speech", "espeak", testCreds).Return(nil, provider.ErrUnknownProvider)

	svc := NewAudioService(factory, AudioServiceConfig{}, logger.Discard())
	_, err := svc.GenerateAudio(context.Background(), AudioRequest{Text: "Hi", Provider: "espeak"}, testCreds)
	assert.ErrorIs(t, err, provider.ErrUnknownProvider)
}

func TestAudioService_EmptyText(t *testing.T) {
	svc := NewAudioService(mocks.NewMockFactory(t), AudioServiceConfig{}, logger.Discard())
	_, err := svc.GenerateAudio(context.Background(), AudioRequest{Text: ""}, testCreds)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestFileStore_PathIsServedRouteForAbsoluteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "var", "data", "img")
	require.True(t, filepath.IsAbs(dir))
	store := NewFileStore(dir)
	store.now = func() time.Time { return time.UnixMilli(42) }

	p, err := store.Save([]byte("WEBP"), "webp")
	require.NoError(t, err)

	assert.Equal(t, "images/42.webp", p)
	assert.FileExists(t, filepath.Join(dir, "42.webp"))
}
