package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abbakary/portals/internal/access"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
	"github.com/abbakary/portals/internal/operations"
)

type photoPayload struct {
	ImagePath string `json:"image_path"`
	Caption   string `json:"caption,omitempty"`
}

type responsePayload struct {
	ChecklistItemID string         `json:"checklist_item"`
	Result          string         `json:"result"`
	Severity        int            `json:"severity,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	Photos          []photoPayload `json:"photos,omitempty"`
}

type checklistItemDetailPayload struct {
	Code          string `json:"code"`
	Title         string `json:"title"`
	RequiresPhoto bool   `json:"requires_photo"`
	CategoryCode  string `json:"category_code"`
	CategoryName  string `json:"category_name"`
}

type responseDetailPayload struct {
	ID                  string                     `json:"id"`
	ChecklistItemID     string                     `json:"checklist_item"`
	ChecklistItemDetail checklistItemDetailPayload `json:"checklist_item_detail"`
	Result              string                     `json:"result"`
	Severity            int                        `json:"severity"`
	Notes               string                     `json:"notes,omitempty"`
	Photos              []photoPayload             `json:"photos"`
}

type reportPayload struct {
	Summary            string `json:"summary"`
	RecommendedActions string `json:"recommended_actions"`
	PublishedAt        string `json:"published_at"`
}

type inspectionSummaryPayload struct {
	ID          string  `json:"id"`
	Reference   string  `json:"reference"`
	VehicleID   string  `json:"vehicle"`
	CustomerID  string  `json:"customer"`
	InspectorID string  `json:"inspector"`
	Status      string  `json:"status"`
	StartedAt   *string `json:"started_at"`
	CompletedAt *string `json:"completed_at"`
	CreatedAt   string  `json:"created_at"`
}

type inspectionDetailPayload struct {
	inspectionSummaryPayload
	AssignmentID    *string                 `json:"assignment"`
	OdometerReading int                     `json:"odometer_reading"`
	GeneralNotes    string                  `json:"general_notes,omitempty"`
	ItemResponses   []responseDetailPayload `json:"item_responses"`
	CustomerReport  *reportPayload          `json:"customer_report,omitempty"`
	UpdatedAt       string                  `json:"updated_at"`
}

func timePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339)
	return &formatted
}

func inspectionSummary(ins model.Inspection) inspectionSummaryPayload {
	return inspectionSummaryPayload{
		ID:          ins.ID,
		Reference:   ins.Reference,
		VehicleID:   ins.VehicleID,
		CustomerID:  ins.CustomerID,
		InspectorID: ins.InspectorID,
		Status:      ins.Status,
		StartedAt:   timePtr(ins.StartedAt),
		CompletedAt: timePtr(ins.CompletedAt),
		CreatedAt:   ins.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func inspectionDetail(detail operations.InspectionDetail) inspectionDetailPayload {
	ins := detail.Inspection
	payload := inspectionDetailPayload{
		inspectionSummaryPayload: inspectionSummary(ins),
		AssignmentID:             ins.AssignmentID,
		OdometerReading:          ins.OdometerReading,
		GeneralNotes:             ins.GeneralNotes,
		ItemResponses:            make([]responseDetailPayload, 0, len(detail.Responses)),
		UpdatedAt:                ins.UpdatedAt.UTC().Format(time.RFC3339),
	}
	for _, d := range detail.Responses {
		photos := make([]photoPayload, 0, len(d.Photos))
		for _, p := range d.Photos {
			photos = append(photos, photoPayload{ImagePath: p.ImagePath, Caption: p.Caption})
		}
		payload.ItemResponses = append(payload.ItemResponses, responseDetailPayload{
			ID:              d.Response.ID,
			ChecklistItemID: d.Response.ChecklistItemID,
			ChecklistItemDetail: checklistItemDetailPayload{
				Code:          d.ItemCode,
				Title:         d.ItemTitle,
				RequiresPhoto: d.RequiresPhoto,
				CategoryCode:  d.CategoryCode,
				CategoryName:  d.CategoryName,
			},
			Result:   d.Response.Result,
			Severity: d.Response.Severity,
			Notes:    d.Response.Notes,
			Photos:   photos,
		})
	}
	if detail.Report != nil {
		payload.CustomerReport = &reportPayload{
			Summary:            detail.Report.Summary,
			RecommendedActions: detail.Report.RecommendedActions,
			PublishedAt:        detail.Report.PublishedAt.UTC().Format(time.RFC3339),
		}
	}
	return payload
}

func responseInputs(payloads []responsePayload) []operations.ResponseInput {
	inputs := make([]operations.ResponseInput, 0, len(payloads))
	for _, p := range payloads {
		photos := make([]operations.PhotoInput, 0, len(p.Photos))
		for _, photo := range p.Photos {
			photos = append(photos, operations.PhotoInput{ImagePath: photo.ImagePath, Caption: photo.Caption})
		}
		inputs = append(inputs, operations.ResponseInput{
			ChecklistItemID: p.ChecklistItemID,
			Result:          p.Result,
			Severity:        p.Severity,
			Notes:           p.Notes,
			Photos:          photos,
		})
	}
	return inputs
}

func inspectionScope(scope access.RowScope) db.InspectionFilter {
	return db.InspectionFilter{CustomerID: scope.CustomerID, InspectorID: scope.InspectorID}
}

func (s *Server) handleListInspections(w http.ResponseWriter, r *http.Request) {
	scope, visible := principalFromContext(r.Context()).ReadScope()
	if !visible {
		writeJSON(w, http.StatusOK, []inspectionSummaryPayload{})
		return
	}

	inspections, err := s.store.Queries.ListInspections(r.Context(), inspectionScope(scope), queryLimit(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]inspectionSummaryPayload, 0, len(inspections))
	for _, ins := range inspections {
		resp = append(resp, inspectionSummary(ins))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createInspectionRequest struct {
	AssignmentID    string            `json:"assignment"`
	VehicleID       string            `json:"vehicle"`
	InspectorID     string            `json:"inspector"`
	Status          string            `json:"status"`
	StartedAt       *time.Time        `json:"started_at"`
	OdometerReading int               `json:"odometer_reading"`
	GeneralNotes    string            `json:"general_notes"`
	ItemResponses   []responsePayload `json:"item_responses"`
}

func (s *Server) handleCreateInspection(w http.ResponseWriter, r *http.Request) {
	var req createInspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	caller := principalFromContext(r.Context())
	inspection, err := operations.CreateInspection(r.Context(), s.store, caller, operations.CreateInspectionInput{
		AssignmentID:    req.AssignmentID,
		VehicleID:       req.VehicleID,
		InspectorID:     req.InspectorID,
		Status:          req.Status,
		StartedAt:       req.StartedAt,
		OdometerReading: req.OdometerReading,
		GeneralNotes:    req.GeneralNotes,
		Responses:       responseInputs(req.ItemResponses),
	})
	if err != nil {
		writeOpError(w, err)
		return
	}

	detail, err := operations.GetInspectionDetail(r.Context(), s.store, db.InspectionFilter{}, inspection.ID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inspectionDetail(detail))
}

func (s *Server) handleGetInspection(w http.ResponseWriter, r *http.Request) {
	scope, visible := principalFromContext(r.Context()).ReadScope()
	if !visible {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}

	detail, err := operations.GetInspectionDetail(r.Context(), s.store, inspectionScope(scope), chi.URLParam(r, "inspectionID"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inspectionDetail(detail))
}

type updateInspectionRequest struct {
	AssignmentID    *string            `json:"assignment,omitempty"`
	VehicleID       *string            `json:"vehicle,omitempty"`
	InspectorID     *string            `json:"inspector,omitempty"`
	Status          *string            `json:"status,omitempty"`
	StartedAt       *time.Time         `json:"started_at,omitempty"`
	OdometerReading *int               `json:"odometer_reading,omitempty"`
	GeneralNotes    *string            `json:"general_notes,omitempty"`
	ItemResponses   *[]responsePayload `json:"item_responses,omitempty"`
}

func (s *Server) handleUpdateInspection(w http.ResponseWriter, r *http.Request) {
	var req updateInspectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	input := operations.UpdateInspectionInput{
		AssignmentID:    req.AssignmentID,
		VehicleID:       req.VehicleID,
		InspectorID:     req.InspectorID,
		Status:          req.Status,
		StartedAt:       req.StartedAt,
		OdometerReading: req.OdometerReading,
		GeneralNotes:    req.GeneralNotes,
	}
	if req.ItemResponses != nil {
		input.SetResponses = true
		input.Responses = responseInputs(*req.ItemResponses)
	}

	caller := principalFromContext(r.Context())
	inspectionID := chi.URLParam(r, "inspectionID")
	if _, err := operations.UpdateInspection(r.Context(), s.store, caller, inspectionID, input); err != nil {
		writeOpError(w, err)
		return
	}

	detail, err := operations.GetInspectionDetail(r.Context(), s.store, db.InspectionFilter{}, inspectionID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inspectionDetail(detail))
}

func (s *Server) handleSubmitInspection(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	detail, err := operations.SubmitInspection(r.Context(), s.store, caller, chi.URLParam(r, "inspectionID"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inspectionDetail(detail))
}

func (s *Server) handleApproveInspection(w http.ResponseWriter, r *http.Request) {
	inspection, report, err := operations.ApproveInspection(r.Context(), s.store, chi.URLParam(r, "inspectionID"))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": inspection.Status,
		"report": report.Summary,
	})
}
