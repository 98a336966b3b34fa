package story

import (
	"errors"
	"fmt"
)

// ErrUnsupportedEventType is returned when a legacy document holds an event
// the current schema cannot express.
var ErrUnsupportedEventType = errors.New("event type is not supported by the current story schema")

// MigrateV1 rewrites a decoded schema version 1 document into the current
// shape. Embedded character objects on events become the character's name
// and a legacy "text" field becomes "content" when content is missing.
// Null optional fields are dropped.
// Version 1 "input" events have no counterpart and fail the migration.
// The input is not modified.
func MigrateV1(raw any) (map[string]any, error) {
	doc, err := normalize(raw)
	if err != nil {
		return nil, err
	}
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, parseFailure("story document must be an object")
	}

	out := make(map[string]any, len(root))
	for k, v := range root {
		out[k] = v
	}

	scenes, ok := root["scenes"].([]any)
	if !ok {
		return out, nil
	}

	migrated := make([]any, len(scenes))
	for i, rawScene := range scenes {
		scene, ok := rawScene.(map[string]any)
		if !ok {
			migrated[i] = rawScene
			continue
		}
		newScene, err := migrateScene(scene)
		if err != nil {
			return nil, err
		}
		migrated[i] = newScene
	}
	out["scenes"] = migrated
	return out, nil
}

func migrateScene(scene map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(scene))
	for k, v := range scene {
		out[k] = v
	}

	events, ok := scene["events"].([]any)
	if !ok {
		return out, nil
	}

	migrated := make([]any, len(events))
	for i, rawEvent := range events {
		event, ok := rawEvent.(map[string]any)
		if !ok {
			migrated[i] = rawEvent
			continue
		}

		if t, _ := event["type"].(string); t == "input" {
			id, _ := event["id"].(string)
			return nil, fmt.Errorf("scene %v event %q: %w", scene["id"], id, ErrUnsupportedEventType)
		}

		newEvent := make(map[string]any, len(event))
		for k, v := range event {
			if v != nil {
				newEvent[k] = v
			}
		}
		if embedded, ok := event["character"].(map[string]any); ok {
			newEvent["character"] = embedded["name"]
			if _, hasVoice := newEvent["voice"]; !hasVoice {
				newEvent["voice"] = embedded["voice"]
			}
		}
		if text, ok := newEvent["text"]; ok {
			if _, hasContent := newEvent["content"]; !hasContent {
				newEvent["content"] = text
			}
			delete(newEvent, "text")
		}
		migrated[i] = newEvent
	}
	out["events"] = migrated
	return out, nil
}
