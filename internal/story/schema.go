package story

import (
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// SchemaName is the name under which the story schema is published to providers
const SchemaName = "story"

var (
	validationSchema     *openapi3.Schema
	responseSchema       *openapi3.Schema
	validationSchemaOnce sync.Once
	responseSchemaOnce   sync.Once
)

// JSONSchema returns the schema Parse checks documents against.
// The returned value is shared and must not be modified.
func JSONSchema() *openapi3.Schema {
	validationSchemaOnce.Do(func() {
		validationSchema = newStorySchema(false)
	})
	return validationSchema
}

// ResponseSchema returns the schema sent to completion providers for
// structured output. Every property is required, which strict providers
// demand; any document it admits is also admitted by JSONSchema.
func ResponseSchema() *openapi3.Schema {
	responseSchemaOnce.Do(func() {
		responseSchema = newStorySchema(true)
	})
	return responseSchema
}

func newStorySchema(strict bool) *openapi3.Schema {
	voices := make([]string, 0, len(Voices))
	for _, v := range Voices {
		voices = append(voices, string(v))
	}
	eventTypes := make([]string, 0, len(EventTypes))
	for _, t := range EventTypes {
		eventTypes = append(eventTypes, string(t))
	}

	// Strict providers reject length keywords, so identifiers are only
	// length-checked locally.
	identifier := func() *openapi3.Schema {
		if strict {
			return openapi3.NewStringSchema()
		}
		return openapi3.NewStringSchema().WithMinLength(1)
	}

	personality := object(map[string]*openapi3.Schema{
		"trait":        openapi3.NewStringSchema(),
		"goal":         openapi3.NewStringSchema(),
		"speech_style": openapi3.NewStringSchema(),
	}, "trait", "goal", "speech_style")

	character := object(map[string]*openapi3.Schema{
		"name":        identifier(),
		"prompt":      openapi3.NewStringSchema(),
		"voice":       enum(voices),
		"personality": personality,
	}, "name", "prompt", "voice", "personality")

	eventRequired := []string{"type", "character", "voice", "content", "id", "order"}
	if strict {
		eventRequired = append(eventRequired, "emotion")
	}
	event := object(map[string]*openapi3.Schema{
		"type":      enum(eventTypes),
		"character": identifier(),
		"voice":     enum(voices),
		"emotion":   openapi3.NewStringSchema(),
		"content":   openapi3.NewStringSchema(),
		"id":        identifier(),
		"order":     openapi3.NewIntegerSchema(),
	}, eventRequired...)

	scene := object(map[string]*openapi3.Schema{
		"name":   openapi3.NewStringSchema(),
		"id":     identifier(),
		"prompt": openapi3.NewStringSchema(),
		"mood":   openapi3.NewStringSchema(),
		"time":   openapi3.NewStringSchema(),
		"events": openapi3.NewArraySchema().WithItems(event),
	}, "name", "id", "prompt", "mood", "time", "events")

	globalState := object(map[string]*openapi3.Schema{
		"words_learned": openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
	}, "words_learned")

	state := object(map[string]*openapi3.Schema{
		"global_state": globalState,
	}, "global_state")

	main := object(map[string]*openapi3.Schema{
		"title": openapi3.NewStringSchema(),
		"flow":  openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()),
		"state": state,
	}, "title", "flow", "state")

	return object(map[string]*openapi3.Schema{
		"main":       main,
		"characters": openapi3.NewArraySchema().WithItems(character),
		"scenes":     openapi3.NewArraySchema().WithItems(scene),
	}, "main", "characters", "scenes")
}

func object(properties map[string]*openapi3.Schema, required ...string) *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperties(properties).
		WithRequired(required).
		WithoutAdditionalProperties()
}

func enum(values []string) *openapi3.Schema {
	allowed := make([]any, len(values))
	for i, v := range values {
		allowed[i] = v
	}
	return openapi3.NewStringSchema().WithEnum(allowed...)
}
