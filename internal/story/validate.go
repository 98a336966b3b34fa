package story

import (
	"fmt"
	"sort"
	"strings"
)

// Validate checks the cast and voice rules of a parsed story. Rule
// categories run in order and the first failing category is returned with
// all of its violations. On success the same story is returned unchanged,
// so validating an already valid story again has no effect.
func Validate(s *Story) (*Story, error) {
	if s == nil {
		return nil, parseFailure("story is nil")
	}
	if err := ValidateStorytellerAndVoices(s.Characters); err != nil {
		return nil, err
	}
	if err := ValidateVoiceConsistency(s.Scenes, s.Characters); err != nil {
		return nil, err
	}
	return s, nil
}

// ValidateStorytellerAndVoices requires a Storyteller using StorytellerVoice
// and pairwise distinct voices across all characters.
func ValidateStorytellerAndVoices(characters []Character) error {
	v := violations{stage: StageCast}

	storyteller, found := findCharacter(characters, StorytellerName)
	switch {
	case !found:
		v.add(RuleMissingStoryteller, "missing storyteller: no character is named "+StorytellerName)
	case storyteller.Voice != StorytellerVoice:
		v.add(RuleStorytellerVoice, fmt.Sprintf("bad storyteller voice: %s uses %q, expected %q",
			StorytellerName, storyteller.Voice, StorytellerVoice))
	}

	if dups := duplicateVoices(characters); len(dups) > 0 {
		v.add(RuleDuplicateVoice, "duplicate voices: "+formatDuplicates(dups))
	}

	return v.err()
}

// ValidateVoiceConsistency requires every event attributed to a known
// character to use that character's voice, and only the Storyteller to
// narrate. Events naming unknown characters are not checked.
func ValidateVoiceConsistency(scenes []Scene, characters []Character) error {
	v := violations{stage: StageConsistency}

	voices := make(map[string]Voice, len(characters))
	for _, c := range characters {
		voices[c.Name] = c.Voice
	}

	for _, sc := range scenes {
		for _, ev := range sc.OrderedEvents() {
			expected, known := voices[ev.Character]
			if !known {
				continue
			}
			if ev.Voice != expected {
				v.add(RuleVoiceMismatch, fmt.Sprintf(
					"voice mismatch in scene %q event %q: %s spoke with %q, expected %q",
					sc.ID, ev.ID, ev.Character, ev.Voice, expected))
			}
			if ev.Type == EventNarrate && ev.Character != StorytellerName {
				v.add(RuleNarrationRestricted, fmt.Sprintf(
					"narration restricted in scene %q event %q: %s is not the %s",
					sc.ID, ev.ID, ev.Character, StorytellerName))
			}
		}
	}

	return v.err()
}

func findCharacter(characters []Character, name string) (Character, bool) {
	for _, c := range characters {
		if c.Name == name {
			return c, true
		}
	}
	return Character{}, false
}

// duplicateVoices maps every voice used by more than one character to the
// names using it, in declaration order.
func duplicateVoices(characters []Character) map[Voice][]string {
	byVoice := make(map[Voice][]string)
	for _, c := range characters {
		byVoice[c.Voice] = append(byVoice[c.Voice], c.Name)
	}
	for voice, names := range byVoice {
		if len(names) < 2 {
			delete(byVoice, voice)
		}
	}
	return byVoice
}

func formatDuplicates(dups map[Voice][]string) string {
	keys := make([]string, 0, len(dups))
	for voice := range dups {
		keys = append(keys, string(voice))
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: [%s]", k, strings.Join(dups[Voice(k)], ", "))
	}
	return strings.Join(parts, ", ")
}
