package operations

import (
	"strings"
	"testing"

	"github.com/abbakary/portals/internal/model"
)

func detail(title, result string, severity int, notes string) model.ResponseDetail {
	return model.ResponseDetail{
		Response:  model.ItemResponse{Result: result, Severity: severity, Notes: notes},
		ItemTitle: title,
	}
}

func TestBuildReportNoFailures(t *testing.T) {
	summary, actions := BuildReport([]model.ResponseDetail{
		detail("Brake pads", model.ResultPass, 1, ""),
		detail("Horn", model.ResultNA, 1, ""),
	})
	if summary != "No critical issues recorded during this inspection." {
		t.Fatalf("summary = %q", summary)
	}
	if actions != "" {
		t.Fatalf("recommended actions should be empty, got %q", actions)
	}
}

func TestBuildReportEmptyResponseSet(t *testing.T) {
	summary, actions := BuildReport(nil)
	if summary != "No critical issues recorded during this inspection." {
		t.Fatalf("summary = %q", summary)
	}
	if actions != "" {
		t.Fatalf("recommended actions should be empty, got %q", actions)
	}
}

func TestBuildReportWithFailures(t *testing.T) {
	summary, actions := BuildReport([]model.ResponseDetail{
		detail("Brake pads", model.ResultFail, 4, "Replace front pads"),
		detail("Horn", model.ResultPass, 1, ""),
		detail("Tail lights", model.ResultFail, 2, "Left lamp out"),
	})

	wantSummary := strings.Join([]string{
		"Critical issues detected:",
		"- Brake pads (Severity 4)",
		"- Tail lights (Severity 2)",
	}, "\n")
	if summary != wantSummary {
		t.Fatalf("summary = %q, want %q", summary, wantSummary)
	}

	wantActions := strings.Join([]string{
		"Inspect and service Brake pads. Notes: Replace front pads",
		"Inspect and service Tail lights. Notes: Left lamp out",
	}, "\n")
	if actions != wantActions {
		t.Fatalf("actions = %q, want %q", actions, wantActions)
	}
}

func TestBuildReportDeterministic(t *testing.T) {
	details := []model.ResponseDetail{
		detail("Brake pads", model.ResultFail, 4, "worn"),
		detail("Mirrors", model.ResultFail, 1, "cracked"),
	}
	s1, a1 := BuildReport(details)
	s2, a2 := BuildReport(details)
	if s1 != s2 || a1 != a2 {
		t.Fatal("regenerating from the same responses must produce identical text")
	}
}
