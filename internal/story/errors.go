package story

import (
	"errors"
	"strings"
)

// Rule names a validation rule category
type Rule string

// Validation rules
const (
	RuleStructure           Rule = "structure"
	RuleDuplicateName       Rule = "duplicate_character_name"
	RuleDuplicateSceneID    Rule = "duplicate_scene_id"
	RuleDuplicateEventID    Rule = "duplicate_event_id"
	RuleUnknownFlowScene    Rule = "unknown_flow_scene"
	RuleMissingStoryteller  Rule = "missing_storyteller"
	RuleStorytellerVoice    Rule = "bad_storyteller_voice"
	RuleDuplicateVoice      Rule = "duplicate_voices"
	RuleVoiceMismatch       Rule = "voice_mismatch"
	RuleNarrationRestricted Rule = "narration_restricted"
)

// Stage is the validation step that produced an error
type Stage string

// Validation stages in the order they run
const (
	StageParse       Stage = "parse"
	StageCast        Stage = "storyteller_and_voices"
	StageConsistency Stage = "voice_consistency"
)

// Violation is a single broken rule
type Violation struct {
	Rule    Rule   `json:"rule"`
	Message string `json:"message"`
}

// ValidationError reports every violation found in one stage
type ValidationError struct {
	Stage      Stage       `json:"stage"`
	Violations []Violation `json:"violations"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	messages := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		messages[i] = v.Message
	}
	return "invalid story: " + strings.Join(messages, "; ")
}

// Has reports whether the error contains a violation of rule
func (e *ValidationError) Has(rule Rule) bool {
	for _, v := range e.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// AsValidationError unwraps err into a *ValidationError
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

type violations struct {
	stage Stage
	list  []Violation
}

func (v *violations) add(rule Rule, message string) {
	v.list = append(v.list, Violation{Rule: rule, Message: message})
}

func (v *violations) err() error {
	if len(v.list) == 0 {
		return nil
	}
	return &ValidationError{Stage: v.stage, Violations: v.list}
}
