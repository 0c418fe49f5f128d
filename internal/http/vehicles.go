package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abbakary/portals/internal/access"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

type vehiclePayload struct {
	ID                string `json:"id"`
	CustomerID        string `json:"customer"`
	VIN               string `json:"vin"`
	LicensePlate      string `json:"license_plate"`
	Make              string `json:"make"`
	Model             string `json:"model"`
	Year              int    `json:"year"`
	VehicleType       string `json:"vehicle_type,omitempty"`
	AxleConfiguration string `json:"axle_configuration,omitempty"`
	Mileage           int    `json:"mileage"`
	Notes             string `json:"notes,omitempty"`
	CreatedAt         string `json:"created_at"`
	UpdatedAt         string `json:"updated_at"`
}

func vehicleResponse(v model.Vehicle) vehiclePayload {
	return vehiclePayload{
		ID:                v.ID,
		CustomerID:        v.CustomerID,
		VIN:               v.VIN,
		LicensePlate:      v.LicensePlate,
		Make:              v.Make,
		Model:             v.Model,
		Year:              v.Year,
		VehicleType:       v.VehicleType,
		AxleConfiguration: v.AxleConfiguration,
		Mileage:           v.Mileage,
		Notes:             v.Notes,
		CreatedAt:         v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:         v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func vehicleFilter(scope access.RowScope) db.VehicleFilter {
	return db.VehicleFilter{CustomerID: scope.CustomerID, AssignedInspectorID: scope.InspectorID}
}

func validYear(year int) bool {
	return year >= 1900 && year <= time.Now().UTC().Year()+1
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	scope, visible := principalFromContext(r.Context()).ReadScope()
	if !visible {
		writeJSON(w, http.StatusOK, []vehiclePayload{})
		return
	}

	vehicles, err := s.store.Queries.ListVehicles(r.Context(), vehicleFilter(scope), queryLimit(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]vehiclePayload, 0, len(vehicles))
	for _, v := range vehicles {
		resp = append(resp, vehicleResponse(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createVehicleRequest struct {
	CustomerID        string `json:"customer"`
	VIN               string `json:"vin"`
	LicensePlate      string `json:"license_plate"`
	Make              string `json:"make"`
	Model             string `json:"model"`
	Year              int    `json:"year"`
	VehicleType       string `json:"vehicle_type"`
	AxleConfiguration string `json:"axle_configuration"`
	Mileage           int    `json:"mileage"`
	Notes             string `json:"notes"`
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	if req.CustomerID == "" || req.VIN == "" || req.LicensePlate == "" || req.Make == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if !validYear(req.Year) {
		writeError(w, http.StatusBadRequest, "invalid_year")
		return
	}

	if _, err := s.store.Queries.GetCustomer(r.Context(), req.CustomerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "customer_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	now := time.Now().UTC()
	vehicle := model.Vehicle{
		ID:                uuid.NewString(),
		CustomerID:        req.CustomerID,
		VIN:               req.VIN,
		LicensePlate:      req.LicensePlate,
		Make:              req.Make,
		Model:             req.Model,
		Year:              req.Year,
		VehicleType:       req.VehicleType,
		AxleConfiguration: req.AxleConfiguration,
		Mileage:           req.Mileage,
		Notes:             req.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Queries.CreateVehicle(r.Context(), vehicle); err != nil {
		if db.IsUniqueViolation(err, "") {
			writeError(w, http.StatusBadRequest, "duplicate_vin")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, vehicleResponse(vehicle))
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	scope, visible := principalFromContext(r.Context()).ReadScope()
	if !visible {
		writeError(w, http.StatusNotFound, "vehicle_not_found")
		return
	}

	vehicleID := chi.URLParam(r, "vehicleID")
	vehicle, err := s.store.Queries.GetVehicle(r.Context(), vehicleID, vehicleFilter(scope))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "vehicle_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse(vehicle))
}

type updateVehicleRequest struct {
	CustomerID        *string `json:"customer,omitempty"`
	VIN               *string `json:"vin,omitempty"`
	LicensePlate      *string `json:"license_plate,omitempty"`
	Make              *string `json:"make,omitempty"`
	Model             *string `json:"model,omitempty"`
	Year              *int    `json:"year,omitempty"`
	VehicleType       *string `json:"vehicle_type,omitempty"`
	AxleConfiguration *string `json:"axle_configuration,omitempty"`
	Mileage           *int    `json:"mileage,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

func (s *Server) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")

	var req updateVehicleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if req.Year != nil && !validYear(*req.Year) {
		writeError(w, http.StatusBadRequest, "invalid_year")
		return
	}
	if req.CustomerID != nil {
		if _, err := s.store.Queries.GetCustomer(r.Context(), *req.CustomerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeError(w, http.StatusBadRequest, "customer_not_found")
				return
			}
			writeError(w, http.StatusInternalServerError, "server_error")
			return
		}
	}

	vehicle, err := s.store.Queries.UpdateVehicle(r.Context(), vehicleID, db.VehicleUpdate{
		CustomerID:        req.CustomerID,
		VIN:               req.VIN,
		LicensePlate:      req.LicensePlate,
		Make:              req.Make,
		Model:             req.Model,
		Year:              req.Year,
		VehicleType:       req.VehicleType,
		AxleConfiguration: req.AxleConfiguration,
		Mileage:           req.Mileage,
		Notes:             req.Notes,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "vehicle_not_found")
			return
		}
		if db.IsUniqueViolation(err, "") {
			writeError(w, http.StatusBadRequest, "duplicate_vin")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse(vehicle))
}

func (s *Server) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := chi.URLParam(r, "vehicleID")
	deleted, err := s.store.Queries.DeleteVehicle(r.Context(), vehicleID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "vehicle_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
