package operations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/abbakary/portals/internal/model"
)

// transitions is the inspection workflow graph. A status may always
// transition to itself; re-submitting or re-approving regenerates the
// customer report with the same deterministic content.
var transitions = map[string][]string{
	model.InspectionDraft:      {model.InspectionInProgress, model.InspectionSubmitted},
	model.InspectionInProgress: {model.InspectionSubmitted},
	model.InspectionSubmitted:  {model.InspectionApproved},
	model.InspectionApproved:   {},
}

var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "portal_inspection_transitions_total",
	Help: "Inspection workflow transitions applied, by origin and target status.",
}, []string{"from", "to"})

func CanTransition(from, to string) bool {
	if _, known := transitions[from]; !known {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func recordTransition(from, to string) {
	transitionsTotal.WithLabelValues(from, to).Inc()
}
