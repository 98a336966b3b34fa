package story

import "sort"

// StorytellerName is the only character allowed to narrate
const StorytellerName = "Storyteller"

// Voice identifies a synthesized speaking voice
type Voice string

// Supported voices
const (
	VoiceAlloy   Voice = "alloy"
	VoiceEcho    Voice = "echo"
	VoiceShimmer Voice = "shimmer"
	VoiceAsh     Voice = "ash"
	VoiceBallad  Voice = "ballad"
	VoiceCoral   Voice = "coral"
	VoiceSage    Voice = "sage"
	VoiceVerse   Voice = "verse"
	VoiceNova    Voice = "nova"
)

// StorytellerVoice is the voice the Storyteller must always use
const StorytellerVoice = VoiceNova

// Voices lists every supported voice in declaration order
var Voices = []Voice{
	VoiceAlloy,
	VoiceEcho,
	VoiceShimmer,
	VoiceAsh,
	VoiceBallad,
	VoiceCoral,
	VoiceSage,
	VoiceVerse,
	VoiceNova,
}

// IsValid reports whether v is a supported voice
func (v Voice) IsValid() bool {
	for _, known := range Voices {
		if v == known {
			return true
		}
	}
	return false
}

// EventType is the kind of a story event
type EventType string

// Event types
const (
	EventNarrate EventType = "narrate"
	EventSpeak   EventType = "speak"
)

// EventTypes lists every event type accepted by the current schema
var EventTypes = []EventType{EventNarrate, EventSpeak}

// Personality describes how a character behaves
type Personality struct {
	Trait       string `json:"trait"`
	Goal        string `json:"goal"`
	SpeechStyle string `json:"speech_style"`
}

// Character is a named participant with a fixed voice
type Character struct {
	Name        string      `json:"name"`
	Prompt      string      `json:"prompt"`
	Voice       Voice       `json:"voice"`
	Personality Personality `json:"personality"`
}

// Event is a single narrated or spoken line in a scene
type Event struct {
	Type      EventType `json:"type"`
	Character string    `json:"character"`
	Voice     Voice     `json:"voice"`
	Emotion   string    `json:"emotion,omitempty"`
	Content   string    `json:"content"`
	ID        string    `json:"id"`
	Order     int       `json:"order"`
}

// Scene groups events under a single illustration
type Scene struct {
	Name   string  `json:"name"`
	ID     string  `json:"id"`
	Prompt string  `json:"prompt"`
	Mood   string  `json:"mood"`
	Time   string  `json:"time"`
	Events []Event `json:"events"`
}

// OrderedEvents returns a copy of the scene's events sorted by Order.
// Events sharing an order keep their list position.
func (s Scene) OrderedEvents() []Event {
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Order < events[j].Order
	})
	return events
}

// GlobalState tracks what the child picks up across the story
type GlobalState struct {
	WordsLearned []string `json:"words_learned"`
}

// State wraps the global story state
type State struct {
	GlobalState GlobalState `json:"global_state"`
}

// Main holds the title and the scene traversal order
type Main struct {
	Title string   `json:"title"`
	Flow  []string `json:"flow"`
	State State    `json:"state"`
}

// Story is a complete generated story
type Story struct {
	Main       Main        `json:"main"`
	Characters []Character `json:"characters"`
	Scenes     []Scene     `json:"scenes"`
}

// Character returns the character with the given name
func (s *Story) Character(name string) (Character, bool) {
	for _, c := range s.Characters {
		if c.Name == name {
			return c, true
		}
	}
	return Character{}, false
}

// Scene returns the scene with the given id
func (s *Story) Scene(id string) (Scene, bool) {
	for _, sc := range s.Scenes {
		if sc.ID == id {
			return sc, true
		}
	}
	return Scene{}, false
}
