package operations

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abbakary/portals/internal/access"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

type PhotoInput struct {
	ImagePath string
	Caption   string
}

type ResponseInput struct {
	ChecklistItemID string
	Result          string
	Severity        int
	Notes           string
	Photos          []PhotoInput
}

type CreateInspectionInput struct {
	AssignmentID    string
	VehicleID       string
	InspectorID     string
	Status          string
	StartedAt       *time.Time
	OdometerReading int
	GeneralNotes    string
	Responses       []ResponseInput
}

type UpdateInspectionInput struct {
	AssignmentID    *string
	VehicleID       *string
	InspectorID     *string
	Status          *string
	StartedAt       *time.Time
	OdometerReading *int
	GeneralNotes    *string
	Responses       []ResponseInput
	SetResponses    bool
}

// InspectionDetail is the full read shape: the row, its responses in
// report order, and the customer report when one exists.
type InspectionDetail struct {
	Inspection model.Inspection
	Responses  []model.ResponseDetail
	Report     *model.CustomerReport
}

// writeScope limits workflow writes to the caller's own inspections.
// Admins see everything; an inspector only rows it performed.
func writeScope(caller access.Principal) (db.InspectionFilter, bool) {
	scope, ok := caller.ReadScope()
	if !ok {
		return db.InspectionFilter{}, false
	}
	return db.InspectionFilter{CustomerID: scope.CustomerID, InspectorID: scope.InspectorID}, true
}

func opErr(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if db.IsUniqueViolation(err, "") {
		return &Error{Code: ErrDuplicateValue, Message: "value already exists"}
	}
	return serverErr()
}

// CreateInspection opens a new inspection for a vehicle. The customer is
// always derived from the vehicle, never taken from the caller. An
// inspector caller is pinned to its own profile regardless of input.
func CreateInspection(ctx context.Context, store *db.Store, caller access.Principal, input CreateInspectionInput) (model.Inspection, error) {
	inspectorID := input.InspectorID
	if caller.Role == model.RoleInspector {
		inspectorID = caller.InspectorID
	}
	if input.VehicleID == "" {
		return model.Inspection{}, validationErr("vehicle_id", "vehicle is required")
	}
	if inspectorID == "" {
		return model.Inspection{}, validationErr("inspector_id", "inspector is required")
	}

	status := input.Status
	if status == "" {
		status = model.InspectionDraft
	}
	if status != model.InspectionDraft && status != model.InspectionInProgress {
		return model.Inspection{}, validationErr("status", "a new inspection starts as draft or in_progress")
	}

	responses, err := normalizeResponses(input.Responses)
	if err != nil {
		return model.Inspection{}, err
	}

	now := time.Now().UTC()
	inspection := model.Inspection{
		ID:              uuid.NewString(),
		Reference:       uuid.NewString(),
		VehicleID:       input.VehicleID,
		InspectorID:     inspectorID,
		Status:          status,
		StartedAt:       input.StartedAt,
		OdometerReading: input.OdometerReading,
		GeneralNotes:    input.GeneralNotes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if input.AssignmentID != "" {
		inspection.AssignmentID = &input.AssignmentID
	}

	err = store.WithTx(ctx, func(q *db.Queries) error {
		vehicle, err := q.GetVehicle(ctx, input.VehicleID, db.VehicleFilter{})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return validationErr("vehicle_id", "vehicle not found")
			}
			return err
		}
		inspection.CustomerID = vehicle.CustomerID

		inspector, err := q.GetInspector(ctx, inspectorID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return validationErr("inspector_id", "inspector not found")
			}
			return err
		}
		if !inspector.IsActive {
			return validationErr("inspector_id", "inspector is not active")
		}

		if inspection.AssignmentID != nil {
			assignment, err := q.GetAssignment(ctx, *inspection.AssignmentID, "")
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return validationErr("assignment_id", "assignment not found")
				}
				return err
			}
			if assignment.VehicleID != vehicle.ID {
				return validationErr("assignment_id", "assignment vehicle does not match the selected vehicle")
			}
			if assignment.InspectorID != inspector.ID {
				return validationErr("assignment_id", "assignment inspector does not match the selected inspector")
			}
		}

		if err := verifyChecklistItems(ctx, q, responses); err != nil {
			return err
		}
		if err := q.CreateInspection(ctx, inspection); err != nil {
			return err
		}
		return insertResponses(ctx, q, inspection.ID, responses, now)
	})
	if err != nil {
		return model.Inspection{}, opErr(err)
	}
	return inspection, nil
}

// UpdateInspection edits inspection fields and, when SetResponses is on,
// replaces the whole response set. Everything runs in one transaction so
// a half-replaced set never becomes visible.
func UpdateInspection(ctx context.Context, store *db.Store, caller access.Principal, inspectionID string, input UpdateInspectionInput) (model.Inspection, error) {
	filter, ok := writeScope(caller)
	if !ok {
		return model.Inspection{}, notFoundErr("inspection not found")
	}

	var responses []ResponseInput
	if input.SetResponses {
		var err error
		responses, err = normalizeResponses(input.Responses)
		if err != nil {
			return model.Inspection{}, err
		}
	}

	now := time.Now().UTC()
	var updated model.Inspection
	err := store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetInspection(ctx, inspectionID, filter)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFoundErr("inspection not found")
			}
			return err
		}

		if input.Status != nil && !CanTransition(current.Status, *input.Status) {
			return &Error{Code: ErrInvalidTransition, Field: "status", Message: "cannot move from " + current.Status + " to " + *input.Status}
		}

		update := db.InspectionUpdate{
			InspectorID:     input.InspectorID,
			Status:          input.Status,
			StartedAt:       input.StartedAt,
			OdometerReading: input.OdometerReading,
			GeneralNotes:    input.GeneralNotes,
		}

		vehicleID := current.VehicleID
		if input.VehicleID != nil && *input.VehicleID != current.VehicleID {
			vehicle, err := q.GetVehicle(ctx, *input.VehicleID, db.VehicleFilter{})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return validationErr("vehicle_id", "vehicle not found")
				}
				return err
			}
			vehicleID = vehicle.ID
			update.VehicleID = &vehicle.ID
			update.CustomerID = &vehicle.CustomerID
		}

		inspectorID := current.InspectorID
		if input.InspectorID != nil {
			inspector, err := q.GetInspector(ctx, *input.InspectorID)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return validationErr("inspector_id", "inspector not found")
				}
				return err
			}
			if !inspector.IsActive {
				return validationErr("inspector_id", "inspector is not active")
			}
			inspectorID = inspector.ID
		}

		if input.AssignmentID != nil {
			if *input.AssignmentID == "" {
				update.ClearAssignment = true
			} else {
				assignment, err := q.GetAssignment(ctx, *input.AssignmentID, "")
				if err != nil {
					if errors.Is(err, pgx.ErrNoRows) {
						return validationErr("assignment_id", "assignment not found")
					}
					return err
				}
				if assignment.VehicleID != vehicleID {
					return validationErr("assignment_id", "assignment vehicle does not match the selected vehicle")
				}
				if assignment.InspectorID != inspectorID {
					return validationErr("assignment_id", "assignment inspector does not match the selected inspector")
				}
				update.AssignmentID = input.AssignmentID
			}
		}

		updated, err = q.UpdateInspection(ctx, inspectionID, update)
		if err != nil {
			return err
		}

		if input.SetResponses {
			if err := verifyChecklistItems(ctx, q, responses); err != nil {
				return err
			}
			if err := q.DeleteItemResponses(ctx, inspectionID); err != nil {
				return err
			}
			if err := insertResponses(ctx, q, inspectionID, responses, now); err != nil {
				return err
			}
		}

		if input.Status != nil && *input.Status != current.Status {
			recordTransition(current.Status, *input.Status)
		}
		return nil
	})
	if err != nil {
		return model.Inspection{}, opErr(err)
	}
	return updated, nil
}

// SubmitInspection moves an inspection to submitted, backfills
// completed_at when unset, and publishes the customer report.
func SubmitInspection(ctx context.Context, store *db.Store, caller access.Principal, inspectionID string) (InspectionDetail, error) {
	filter, ok := writeScope(caller)
	if !ok {
		return InspectionDetail{}, notFoundErr("inspection not found")
	}

	now := time.Now().UTC()
	var detail InspectionDetail
	err := store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetInspection(ctx, inspectionID, filter)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFoundErr("inspection not found")
			}
			return err
		}
		if !CanTransition(current.Status, model.InspectionSubmitted) {
			return &Error{Code: ErrInvalidTransition, Field: "status", Message: "cannot move from " + current.Status + " to " + model.InspectionSubmitted}
		}

		updated, err := q.SetInspectionStatus(ctx, inspectionID, model.InspectionSubmitted, &now)
		if err != nil {
			return err
		}
		report, err := generateReport(ctx, q, inspectionID, now)
		if err != nil {
			return err
		}
		responses, err := q.ListResponseDetails(ctx, inspectionID)
		if err != nil {
			return err
		}

		detail = InspectionDetail{Inspection: updated, Responses: responses, Report: &report}
		recordTransition(current.Status, model.InspectionSubmitted)
		return nil
	})
	if err != nil {
		return InspectionDetail{}, opErr(err)
	}
	return detail, nil
}

// ApproveInspection is the admin sign-off: status becomes approved and
// the report is regenerated from the final response set.
func ApproveInspection(ctx context.Context, store *db.Store, inspectionID string) (model.Inspection, model.CustomerReport, error) {
	now := time.Now().UTC()
	var (
		updated model.Inspection
		report  model.CustomerReport
	)
	err := store.WithTx(ctx, func(q *db.Queries) error {
		current, err := q.GetInspection(ctx, inspectionID, db.InspectionFilter{})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return notFoundErr("inspection not found")
			}
			return err
		}
		if !CanTransition(current.Status, model.InspectionApproved) {
			return &Error{Code: ErrInvalidTransition, Field: "status", Message: "cannot move from " + current.Status + " to " + model.InspectionApproved}
		}

		updated, err = q.SetInspectionStatus(ctx, inspectionID, model.InspectionApproved, nil)
		if err != nil {
			return err
		}
		report, err = generateReport(ctx, q, inspectionID, now)
		if err != nil {
			return err
		}
		recordTransition(current.Status, model.InspectionApproved)
		return nil
	})
	if err != nil {
		return model.Inspection{}, model.CustomerReport{}, opErr(err)
	}
	return updated, report, nil
}

// GetInspectionDetail loads the full read shape within the given scope.
func GetInspectionDetail(ctx context.Context, store *db.Store, filter db.InspectionFilter, inspectionID string) (InspectionDetail, error) {
	inspection, err := store.Queries.GetInspection(ctx, inspectionID, filter)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InspectionDetail{}, notFoundErr("inspection not found")
		}
		return InspectionDetail{}, opErr(err)
	}
	responses, err := store.Queries.ListResponseDetails(ctx, inspectionID)
	if err != nil {
		return InspectionDetail{}, opErr(err)
	}
	detail := InspectionDetail{Inspection: inspection, Responses: responses}

	report, err := store.Queries.GetReportByInspection(ctx, inspectionID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return InspectionDetail{}, opErr(err)
		}
	} else {
		detail.Report = &report
	}
	return detail, nil
}

// normalizeResponses validates result codes, severity bounds, and
// duplicate checklist items, defaulting severity to 1 when omitted.
func normalizeResponses(inputs []ResponseInput) ([]ResponseInput, error) {
	seen := make(map[string]bool, len(inputs))
	out := make([]ResponseInput, 0, len(inputs))
	for _, in := range inputs {
		if in.ChecklistItemID == "" {
			return nil, validationErr("checklist_item", "checklist item is required")
		}
		if seen[in.ChecklistItemID] {
			return nil, validationErr("checklist_item", "duplicate response for checklist item")
		}
		seen[in.ChecklistItemID] = true

		switch in.Result {
		case model.ResultPass, model.ResultFail, model.ResultNA:
		default:
			return nil, validationErr("result", "result must be pass, fail, or not_applicable")
		}

		if in.Severity == 0 {
			in.Severity = 1
		}
		if in.Severity < 1 || in.Severity > 5 {
			return nil, validationErr("severity", "severity must be between 1 and 5")
		}
		out = append(out, in)
	}
	return out, nil
}

func verifyChecklistItems(ctx context.Context, q *db.Queries, responses []ResponseInput) error {
	for _, r := range responses {
		if _, err := q.GetChecklistItem(ctx, r.ChecklistItemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return validationErr("checklist_item", "checklist item not found")
			}
			return err
		}
	}
	return nil
}

func insertResponses(ctx context.Context, q *db.Queries, inspectionID string, responses []ResponseInput, now time.Time) error {
	for _, r := range responses {
		response := model.ItemResponse{
			ID:              uuid.NewString(),
			InspectionID:    inspectionID,
			ChecklistItemID: r.ChecklistItemID,
			Result:          r.Result,
			Severity:        r.Severity,
			Notes:           r.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := q.InsertItemResponse(ctx, response); err != nil {
			return err
		}
		for _, p := range r.Photos {
			photo := model.InspectionPhoto{
				ID:         uuid.NewString(),
				ResponseID: response.ID,
				ImagePath:  p.ImagePath,
				Caption:    p.Caption,
				CreatedAt:  now,
			}
			if err := q.InsertPhoto(ctx, photo); err != nil {
				return err
			}
		}
	}
	return nil
}
