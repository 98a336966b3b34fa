package credentials

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

// Policy decides what happens when a supplied access code does not match
type Policy string

// Access code policies
const (
	// PolicyFallback treats a mismatched code like an absent one and
	// requires the caller's own keys.
	PolicyFallback Policy = "fallback"
	// PolicyStrict rejects a mismatched code outright.
	PolicyStrict Policy = "strict"
)

// ParsePolicy converts a configuration value into a Policy
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyFallback:
		return PolicyFallback, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown access code policy %q", value)
	}
}

var (
	// ErrUnauthorized is returned when no usable credentials were supplied
	ErrUnauthorized = errors.New("invalid access code or missing API keys")
	// ErrDefaultsIncomplete is returned when the access code matched but
	// the process has no full set of provider credentials to hand out.
	ErrDefaultsIncomplete = errors.New("server provider credentials are not fully configured")
)

// Resolver picks the provider credentials for a request
type Resolver struct {
	accessCode string
	defaults   Credentials
	policy     Policy
}

// NewResolver creates a resolver. An empty accessCode disables the
// shared-access-code path.
func NewResolver(accessCode string, defaults Credentials, policy Policy) *Resolver {
	if policy == "" {
		policy = PolicyFallback
	}
	defaults.Source = SourceAccessCode
	return &Resolver{
		accessCode: accessCode,
		defaults:   defaults,
		policy:     policy,
	}
}

// Policy returns the configured access code policy
func (r *Resolver) Policy() Policy {
	return r.policy
}

// DefaultsConfigured reports whether the process holds a full set of
// provider credentials for the access-code path.
func (r *Resolver) DefaultsConfigured() bool {
	return r.accessCode != "" && r.defaults.Complete()
}

// Resolve returns the credentials authorizing a request
func (r *Resolver) Resolve(s Supplied) (Credentials, error) {
	if s.AccessCode != "" {
		if r.matches(s.AccessCode) {
			if !r.defaults.Complete() {
				return Credentials{}, ErrDefaultsIncomplete
			}
			return r.defaults, nil
		}
		if r.policy == PolicyStrict {
			return Credentials{}, ErrUnauthorized
		}
	}

	creds := Credentials{
		OpenAIKey:      s.OpenAIKey,
		ElevenLabsKey:  s.ElevenLabsKey,
		ReplicateToken: s.ReplicateToken,
		Source:         SourceCaller,
	}
	if !creds.Complete() {
		return Credentials{}, ErrUnauthorized
	}
	return creds, nil
}

func (r *Resolver) matches(code string) bool {
	if r.accessCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(code), []byte(r.accessCode)) == 1
}
