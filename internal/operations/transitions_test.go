package operations

import (
	"testing"

	"github.com/abbakary/portals/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.InspectionDraft, model.InspectionInProgress, true},
		{model.InspectionDraft, model.InspectionSubmitted, true},
		{model.InspectionDraft, model.InspectionApproved, false},
		{model.InspectionInProgress, model.InspectionSubmitted, true},
		{model.InspectionInProgress, model.InspectionDraft, false},
		{model.InspectionInProgress, model.InspectionApproved, false},
		{model.InspectionSubmitted, model.InspectionApproved, true},
		{model.InspectionSubmitted, model.InspectionDraft, false},
		{model.InspectionApproved, model.InspectionSubmitted, false},
		{model.InspectionApproved, model.InspectionDraft, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanTransitionSelf(t *testing.T) {
	for _, status := range []string{model.InspectionDraft, model.InspectionInProgress, model.InspectionSubmitted, model.InspectionApproved} {
		if !CanTransition(status, status) {
			t.Errorf("CanTransition(%s, %s) should allow a self transition", status, status)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	if CanTransition("archived", "archived") {
		t.Error("an unknown status should not transition, even to itself")
	}
	if CanTransition("archived", model.InspectionDraft) {
		t.Error("an unknown status should not transition anywhere")
	}
}
