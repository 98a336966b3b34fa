package story

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Parse checks a decoded story document against the story schema and
// builds a Story from it. raw may be JSON bytes, a json.RawMessage, a
// string holding JSON, or a value already decoded by encoding/json.
// Identity rules (unique names and ids, flow references) are checked here
// too; cast and voice rules are left to Validate.
func Parse(raw any) (*Story, error) {
	doc, err := normalize(raw)
	if err != nil {
		return nil, err
	}

	if err := JSONSchema().VisitJSON(doc, openapi3.MultiErrors()); err != nil {
		return nil, structureError(err)
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encoding story document: %w", err)
	}
	var s Story
	if err := json.Unmarshal(encoded, &s); err != nil {
		return nil, &ValidationError{
			Stage:      StageParse,
			Violations: []Violation{{Rule: RuleStructure, Message: err.Error()}},
		}
	}

	if err := checkIdentity(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ParseAndValidate runs Parse followed by Validate
func ParseAndValidate(raw any) (*Story, error) {
	s, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return Validate(s)
}

func normalize(raw any) (any, error) {
	var data []byte
	switch v := raw.(type) {
	case nil:
		return nil, parseFailure("story document is empty")
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	case map[string]any:
		return v, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, parseFailure(fmt.Sprintf("story document is not JSON encodable: %v", err))
		}
		data = encoded
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, parseFailure(fmt.Sprintf("story document is not valid JSON: %v", err))
	}
	return doc, nil
}

func parseFailure(message string) error {
	return &ValidationError{
		Stage:      StageParse,
		Violations: []Violation{{Rule: RuleStructure, Message: message}},
	}
}

func structureError(err error) error {
	v := violations{stage: StageParse}
	for _, e := range flatten(err) {
		var serr *openapi3.SchemaError
		if errors.As(e, &serr) {
			v.add(RuleStructure, fmt.Sprintf("/%s: %s", strings.Join(serr.JSONPointer(), "/"), serr.Reason))
			continue
		}
		v.add(RuleStructure, e.Error())
	}
	return v.err()
}

func flatten(err error) []error {
	if multi, ok := err.(openapi3.MultiError); ok {
		var out []error
		for _, e := range multi {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func checkIdentity(s *Story) error {
	v := violations{stage: StageParse}

	names := make(map[string]int)
	for _, c := range s.Characters {
		names[c.Name]++
	}
	for _, c := range s.Characters {
		if n := names[c.Name]; n > 1 {
			v.add(RuleDuplicateName, fmt.Sprintf("character name %q is used %d times", c.Name, n))
			names[c.Name] = 0
		}
	}

	scenes := make(map[string]int)
	events := make(map[string]int)
	for _, sc := range s.Scenes {
		scenes[sc.ID]++
		for _, ev := range sc.Events {
			events[ev.ID]++
		}
	}
	for _, sc := range s.Scenes {
		if n := scenes[sc.ID]; n > 1 {
			v.add(RuleDuplicateSceneID, fmt.Sprintf("scene id %q is used %d times", sc.ID, n))
			scenes[sc.ID] = 0
		}
		for _, ev := range sc.Events {
			if n := events[ev.ID]; n > 1 {
				v.add(RuleDuplicateEventID, fmt.Sprintf("event id %q is used %d times", ev.ID, n))
				events[ev.ID] = 0
			}
		}
	}

	for _, id := range s.Main.Flow {
		if _, ok := scenes[id]; !ok {
			v.add(RuleUnknownFlowScene, fmt.Sprintf("flow references unknown scene %q", id))
		}
	}

	return v.err()
}
