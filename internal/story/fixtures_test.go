package story

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func validStory() *Story {
	return &Story{
		Main: Main{
			Title: "Pip and the Moon Rocket",
			Flow:  []string{"launch", "landing"},
			State: State{GlobalState: GlobalState{WordsLearned: []string{"orbit", "crater"}}},
		},
		Characters: []Character{
			{
				Name:   StorytellerName,
				Prompt: "A warm voice by the fireplace",
				Voice:  StorytellerVoice,
				Personality: Personality{
					Trait:       "kind",
					Goal:        "guide the listener",
					SpeechStyle: "gentle",
				},
			},
			{
				Name:   "Pip",
				Prompt: "A small robot with a red scarf",
				Voice:  VoiceAlloy,
				Personality: Personality{
					Trait:       "curious",
					Goal:        "reach the moon",
					SpeechStyle: "excited beeps",
				},
			},
			{
				Name:   "Luna",
				Prompt: "A silver owl astronaut",
				Voice:  VoiceCoral,
				Personality: Personality{
					Trait:       "wise",
					Goal:        "teach about space",
					SpeechStyle: "calm",
				},
			},
		},
		Scenes: []Scene{
			{
				Name:   "Launch",
				ID:     "launch",
				Prompt: "A rocket on a grassy hill at sunset",
				Mood:   "excited",
				Time:   "evening",
				Events: []Event{
					{Type: EventSpeak, Character: "Pip", Voice: VoiceAlloy, Emotion: "eager", Content: "Ready for liftoff!", ID: "launch-2", Order: 2},
					{Type: EventNarrate, Character: StorytellerName, Voice: StorytellerVoice, Content: "Once upon a time, Pip built a rocket.", ID: "launch-1", Order: 1},
				},
			},
			{
				Name:   "Landing",
				ID:     "landing",
				Prompt: "Craters glowing under starlight",
				Mood:   "wonder",
				Time:   "night",
				Events: []Event{
					{Type: EventNarrate, Character: StorytellerName, Voice: StorytellerVoice, Content: "They landed softly.", ID: "landing-1", Order: 1},
					{Type: EventSpeak, Character: "Luna", Voice: VoiceCoral, Emotion: "warm", Content: "Welcome to the moon.", ID: "landing-2", Order: 2},
				},
			},
		},
	}
}

// document encodes a story into the generic form a provider response
// decodes to.
func document(t *testing.T, s *Story) map[string]any {
	t.Helper()
	data, err := json.Marshal(s)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func characterAt(doc map[string]any, i int) map[string]any {
	return doc["characters"].([]any)[i].(map[string]any)
}

func eventAt(doc map[string]any, scene, event int) map[string]any {
	sc := doc["scenes"].([]any)[scene].(map[string]any)
	return sc["events"].([]any)[event].(map[string]any)
}
