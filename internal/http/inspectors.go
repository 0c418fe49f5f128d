package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abbakary/portals/internal/crypto"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

type inspectorPayload struct {
	ID                  string `json:"id"`
	Email               string `json:"email"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	PhoneNumber         string `json:"phone_number,omitempty"`
	BadgeID             string `json:"badge_id"`
	Certifications      string `json:"certifications,omitempty"`
	IsActive            bool   `json:"is_active"`
	MaxDailyInspections int    `json:"max_daily_inspections"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

func inspectorResponse(inspector model.InspectorProfile, user model.User) inspectorPayload {
	return inspectorPayload{
		ID:                  inspector.ID,
		Email:               user.Email,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		PhoneNumber:         user.PhoneNumber,
		BadgeID:             inspector.BadgeID,
		Certifications:      inspector.Certifications,
		IsActive:            inspector.IsActive,
		MaxDailyInspections: inspector.MaxDailyInspections,
		CreatedAt:           inspector.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           inspector.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListInspectors(w http.ResponseWriter, r *http.Request) {
	inspectors, err := s.store.Queries.ListInspectors(r.Context(), queryLimit(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]inspectorPayload, 0, len(inspectors))
	for _, inspector := range inspectors {
		user, err := s.store.Queries.GetUserByID(r.Context(), inspector.UserID)
		if err != nil {
			continue
		}
		resp = append(resp, inspectorResponse(inspector, user))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createInspectorRequest struct {
	Email               string `json:"email"`
	Password            string `json:"password"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	PhoneNumber         string `json:"phone_number"`
	BadgeID             string `json:"badge_id"`
	Certifications      string `json:"certifications"`
	MaxDailyInspections int    `json:"max_daily_inspections"`
}

func (s *Server) handleCreateInspector(w http.ResponseWriter, r *http.Request) {
	var req createInspectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" || req.BadgeID == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
	}
	if req.MaxDailyInspections <= 0 {
		req.MaxDailyInspections = 6
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "password_hash_failed")
		return
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         model.RoleInspector,
		PhoneNumber:  req.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	inspector := model.InspectorProfile{
		ID:                  uuid.NewString(),
		UserID:              user.ID,
		BadgeID:             req.BadgeID,
		Certifications:      req.Certifications,
		IsActive:            true,
		MaxDailyInspections: req.MaxDailyInspections,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.store.WithTx(r.Context(), func(q *db.Queries) error {
		if err := q.CreateUser(r.Context(), user); err != nil {
			return err
		}
		return q.CreateInspector(r.Context(), inspector)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			writeError(w, http.StatusBadRequest, "duplicate_value")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, inspectorResponse(inspector, user))
}

func (s *Server) handleGetInspector(w http.ResponseWriter, r *http.Request) {
	inspectorID := chi.URLParam(r, "inspectorID")
	inspector, err := s.store.Queries.GetInspector(r.Context(), inspectorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "inspector_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	user, err := s.store.Queries.GetUserByID(r.Context(), inspector.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, inspectorResponse(inspector, user))
}

type updateInspectorRequest struct {
	Email               *string `json:"email,omitempty"`
	Password            *string `json:"password,omitempty"`
	FirstName           *string `json:"first_name,omitempty"`
	LastName            *string `json:"last_name,omitempty"`
	PhoneNumber         *string `json:"phone_number,omitempty"`
	BadgeID             *string `json:"badge_id,omitempty"`
	Certifications      *string `json:"certifications,omitempty"`
	IsActive            *bool   `json:"is_active,omitempty"`
	MaxDailyInspections *int    `json:"max_daily_inspections,omitempty"`
}

func (s *Server) handleUpdateInspector(w http.ResponseWriter, r *http.Request) {
	inspectorID := chi.URLParam(r, "inspectorID")

	var req updateInspectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	current, err := s.store.Queries.GetInspector(r.Context(), inspectorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "inspector_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	userUpdate := db.UserUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email != "" {
			userUpdate.Email = &email
		}
	}
	if req.Password != nil && strings.TrimSpace(*req.Password) != "" {
		hash, err := crypto.HashPassword(*req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "password_hash_failed")
			return
		}
		userUpdate.PasswordHash = &hash
	}
	inspectorUpdate := db.InspectorUpdate{
		BadgeID:             req.BadgeID,
		Certifications:      req.Certifications,
		IsActive:            req.IsActive,
		MaxDailyInspections: req.MaxDailyInspections,
	}

	var (
		user      model.User
		inspector model.InspectorProfile
	)
	err = s.store.WithTx(r.Context(), func(q *db.Queries) error {
		var err error
		user, err = q.UpdateUser(r.Context(), current.UserID, userUpdate)
		if err != nil {
			return err
		}
		inspector, err = q.UpdateInspector(r.Context(), inspectorID, inspectorUpdate)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			writeError(w, http.StatusBadRequest, "duplicate_value")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, inspectorResponse(inspector, user))
}

func (s *Server) handleDeleteInspector(w http.ResponseWriter, r *http.Request) {
	inspectorID := chi.URLParam(r, "inspectorID")
	inspector, err := s.store.Queries.GetInspector(r.Context(), inspectorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "inspector_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	deleted, err := s.store.Queries.DeleteUser(r.Context(), inspector.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "inspector_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
