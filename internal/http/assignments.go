package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

type assignmentPayload struct {
	ID           string `json:"id"`
	VehicleID    string `json:"vehicle"`
	InspectorID  string `json:"inspector"`
	AssignedBy   string `json:"assigned_by,omitempty"`
	ScheduledFor string `json:"scheduled_for"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func assignmentResponse(a model.VehicleAssignment) assignmentPayload {
	payload := assignmentPayload{
		ID:           a.ID,
		VehicleID:    a.VehicleID,
		InspectorID:  a.InspectorID,
		ScheduledFor: a.ScheduledFor.UTC().Format("2006-01-02"),
		Status:       a.Status,
		Remarks:      a.Remarks,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    a.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if a.AssignedBy != nil {
		payload.AssignedBy = *a.AssignedBy
	}
	return payload
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	scope, visible := principalFromContext(r.Context()).ReadScope()
	if !visible {
		writeJSON(w, http.StatusOK, []assignmentPayload{})
		return
	}

	assignments, err := s.store.Queries.ListAssignments(r.Context(), scope.InspectorID, queryLimit(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]assignmentPayload, 0, len(assignments))
	for _, a := range assignments {
		resp = append(resp, assignmentResponse(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createAssignmentRequest struct {
	VehicleID    string `json:"vehicle"`
	InspectorID  string `json:"inspector"`
	ScheduledFor string `json:"scheduled_for"`
	Status       string `json:"status"`
	Remarks      string `json:"remarks"`
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.VehicleID == "" || req.InspectorID == "" || req.ScheduledFor == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}

	scheduledFor, err := time.Parse("2006-01-02", req.ScheduledFor)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_scheduled_for")
		return
	}

	status := req.Status
	if status == "" {
		status = model.AssignmentAssigned
	}
	switch status {
	case model.AssignmentAssigned, model.AssignmentInProgress, model.AssignmentCompleted:
	default:
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	if _, err := s.store.Queries.GetVehicle(r.Context(), req.VehicleID, db.VehicleFilter{}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "vehicle_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if _, err := s.store.Queries.GetInspector(r.Context(), req.InspectorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "inspector_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	assignedBy := principalFromContext(r.Context()).UserID
	now := time.Now().UTC()
	assignment := model.VehicleAssignment{
		ID:           uuid.NewString(),
		VehicleID:    req.VehicleID,
		InspectorID:  req.InspectorID,
		AssignedBy:   &assignedBy,
		ScheduledFor: scheduledFor,
		Status:       status,
		Remarks:      req.Remarks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Queries.CreateAssignment(r.Context(), assignment); err != nil {
		if db.IsUniqueViolation(err, "vehicle_assignments_slot_key") {
			writeError(w, http.StatusBadRequest, "duplicate_assignment_slot")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, assignmentResponse(assignment))
}

func (s *Server) handleGetAssignment(w http.ResponseWriter, r *http.Request) {
	scope, visible := principalFromContext(r.Context()).ReadScope()
	if !visible {
		writeError(w, http.StatusNotFound, "assignment_not_found")
		return
	}

	assignmentID := chi.URLParam(r, "assignmentID")
	assignment, err := s.store.Queries.GetAssignment(r.Context(), assignmentID, scope.InspectorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "assignment_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, assignmentResponse(assignment))
}

type updateAssignmentRequest struct {
	Status  *string `json:"status,omitempty"`
	Remarks *string `json:"remarks,omitempty"`
}

func (s *Server) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignmentID")

	var req updateAssignmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Status != nil {
		switch *req.Status {
		case model.AssignmentAssigned, model.AssignmentInProgress, model.AssignmentCompleted:
		default:
			writeError(w, http.StatusBadRequest, "invalid_status")
			return
		}
	}

	assignment, err := s.store.Queries.UpdateAssignment(r.Context(), assignmentID, db.AssignmentUpdate{
		Status:  req.Status,
		Remarks: req.Remarks,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "assignment_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, assignmentResponse(assignment))
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	assignmentID := chi.URLParam(r, "assignmentID")
	deleted, err := s.store.Queries.DeleteAssignment(r.Context(), assignmentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "assignment_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
