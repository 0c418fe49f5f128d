package operations

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

// BuildReport synthesizes the customer-facing summary and recommended
// actions from a response set already in report order. Only failed items
// contribute issues; pass and not_applicable results are silent.
func BuildReport(details []model.ResponseDetail) (summary, recommendedActions string) {
	var failed []model.ResponseDetail
	for _, d := range details {
		if d.Response.Result == model.ResultFail {
			failed = append(failed, d)
		}
	}

	var summaryLines []string
	if len(failed) > 0 {
		summaryLines = append(summaryLines, "Critical issues detected:")
		for _, d := range failed {
			summaryLines = append(summaryLines, "- "+d.ItemTitle+" (Severity "+strconv.Itoa(d.Response.Severity)+")")
		}
	} else {
		summaryLines = append(summaryLines, "No critical issues recorded during this inspection.")
	}

	var actions []string
	for _, d := range failed {
		actions = append(actions, "Inspect and service "+d.ItemTitle+". Notes: "+d.Response.Notes)
	}

	return strings.Join(summaryLines, "\n"), strings.Join(actions, "\n")
}

// generateReport rebuilds and stores the customer report of an inspection.
// Regeneration replaces the text but keeps the original published_at.
func generateReport(ctx context.Context, q *db.Queries, inspectionID string, now time.Time) (model.CustomerReport, error) {
	details, err := q.ListResponseDetails(ctx, inspectionID)
	if err != nil {
		return model.CustomerReport{}, err
	}
	summary, actions := BuildReport(details)
	return q.UpsertCustomerReport(ctx, model.CustomerReport{
		ID:                 uuid.NewString(),
		InspectionID:       inspectionID,
		Summary:            summary,
		RecommendedActions: actions,
		PublishedAt:        now,
		UpdatedAt:          now,
	})
}
