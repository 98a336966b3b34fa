package service

import (
	"errors"

	"storybook-ai/backend/internal/story"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Story sources for validation metrics
const (
	sourceGenerated = "generated"
	sourceSupplied  = "supplied"
)

var storiesRejected = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "story_validation_failures_total",
		Help: "Story documents rejected by validation, by source and failing stage.",
	},
	[]string{"source", "stage"},
)

func recordRejection(source string, err error) {
	stage := "unknown"
	var verr *story.ValidationError
	if errors.As(err, &verr) {
		stage = string(verr.Stage)
	}
	storiesRejected.WithLabelValues(source, stage).Inc()
}
