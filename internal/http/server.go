package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/abbakary/portals/internal/access"
	"github.com/abbakary/portals/internal/auth"
	"github.com/abbakary/portals/internal/config"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
	"github.com/abbakary/portals/internal/operations"
)

type Server struct {
	cfg   config.Config
	store *db.Store
	cache *redis.Client
}

// NewServer wires the portal API. cache may be nil; reference-data
// endpoints then skip caching.
func NewServer(cfg config.Config, store *db.Store, cache *redis.Client) *Server {
	return &Server{cfg: cfg, store: store, cache: cache}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	if s.cfg.DevCORS {
		r.Use(devCORS)
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/token", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)
		r.With(s.authMiddleware).Post("/auth/logout", s.handleLogout)

		r.Get("/categories", s.handleListCategories)
		r.Get("/checklist-items", s.handleListChecklistItems)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(s.require(access.ResourceCustomer, access.ActionList)).Get("/customers", s.handleListCustomers)
			r.With(s.require(access.ResourceCustomer, access.ActionCreate)).Post("/customers", s.handleCreateCustomer)
			r.With(s.require(access.ResourceCustomer, access.ActionGet)).Get("/customers/{customerID}", s.handleGetCustomer)
			r.With(s.require(access.ResourceCustomer, access.ActionUpdate)).Put("/customers/{customerID}", s.handleUpdateCustomer)
			r.With(s.require(access.ResourceCustomer, access.ActionDelete)).Delete("/customers/{customerID}", s.handleDeleteCustomer)

			r.With(s.require(access.ResourceInspector, access.ActionList)).Get("/inspectors", s.handleListInspectors)
			r.With(s.require(access.ResourceInspector, access.ActionCreate)).Post("/inspectors", s.handleCreateInspector)
			r.With(s.require(access.ResourceInspector, access.ActionGet)).Get("/inspectors/{inspectorID}", s.handleGetInspector)
			r.With(s.require(access.ResourceInspector, access.ActionUpdate)).Put("/inspectors/{inspectorID}", s.handleUpdateInspector)
			r.With(s.require(access.ResourceInspector, access.ActionDelete)).Delete("/inspectors/{inspectorID}", s.handleDeleteInspector)

			r.With(s.require(access.ResourceVehicle, access.ActionList)).Get("/vehicles", s.handleListVehicles)
			r.With(s.require(access.ResourceVehicle, access.ActionCreate)).Post("/vehicles", s.handleCreateVehicle)
			r.With(s.require(access.ResourceVehicle, access.ActionGet)).Get("/vehicles/{vehicleID}", s.handleGetVehicle)
			r.With(s.require(access.ResourceVehicle, access.ActionUpdate)).Put("/vehicles/{vehicleID}", s.handleUpdateVehicle)
			r.With(s.require(access.ResourceVehicle, access.ActionDelete)).Delete("/vehicles/{vehicleID}", s.handleDeleteVehicle)

			r.With(s.require(access.ResourceAssignment, access.ActionList)).Get("/assignments", s.handleListAssignments)
			r.With(s.require(access.ResourceAssignment, access.ActionCreate)).Post("/assignments", s.handleCreateAssignment)
			r.With(s.require(access.ResourceAssignment, access.ActionGet)).Get("/assignments/{assignmentID}", s.handleGetAssignment)
			r.With(s.require(access.ResourceAssignment, access.ActionUpdate)).Put("/assignments/{assignmentID}", s.handleUpdateAssignment)
			r.With(s.require(access.ResourceAssignment, access.ActionDelete)).Delete("/assignments/{assignmentID}", s.handleDeleteAssignment)

			r.With(s.require(access.ResourceInspection, access.ActionList)).Get("/inspections", s.handleListInspections)
			r.With(s.require(access.ResourceInspection, access.ActionCreate)).Post("/inspections", s.handleCreateInspection)
			r.With(s.require(access.ResourceInspection, access.ActionGet)).Get("/inspections/{inspectionID}", s.handleGetInspection)
			r.With(s.require(access.ResourceInspection, access.ActionUpdate)).Put("/inspections/{inspectionID}", s.handleUpdateInspection)
			r.With(s.require(access.ResourceInspection, access.ActionSubmit)).Post("/inspections/{inspectionID}/submit", s.handleSubmitInspection)
			r.With(s.require(access.ResourceInspection, access.ActionApprove)).Post("/inspections/{inspectionID}/approve", s.handleApproveInspection)

			r.Get("/stats", s.handleStats)
		})
	})

	return r
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing_token")
			return
		}

		claims, err := auth.ParseToken(s.cfg.JWTSecret, s.cfg.JWTIssuer, token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}

		principal := access.Principal{UserID: claims.UserID, Role: claims.Role}
		switch claims.Role {
		case model.RoleCustomer:
			principal.CustomerID = claims.ProfileID
		case model.RoleInspector:
			principal.InspectorID = claims.ProfileID
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		ctx = context.WithValue(ctx, principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) require(resource access.Resource, action access.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !principalFromContext(r.Context()).Can(resource, action) {
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// devCORS opens /api to browser front-ends during development. Not used
// in production deployments.
func devCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if principalFromContext(r.Context()).Role != model.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx := r.Context()
	customers, err := s.store.Queries.CountCustomers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	inspectors, err := s.store.Queries.CountInspectors(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	vehicles, err := s.store.Queries.CountVehicles(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	inspections, err := s.store.Queries.CountInspections(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"customers":   customers,
		"inspectors":  inspectors,
		"vehicles":    vehicles,
		"inspections": inspections,
	})
}

type claimsKey struct{}
type principalKey struct{}

func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}

func principalFromContext(ctx context.Context) access.Principal {
	principal, _ := ctx.Value(principalKey{}).(access.Principal)
	return principal
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func queryLimit(r *http.Request, fallback int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func decodeJSON(r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

// writeOpError maps typed workflow errors to statuses. Anything that is
// not an operations error becomes a 500.
func writeOpError(w http.ResponseWriter, err error) {
	var opError *operations.Error
	if !errors.As(err, &opError) {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	status := http.StatusInternalServerError
	switch opError.Code {
	case operations.ErrValidation, operations.ErrDuplicateValue, operations.ErrInvalidTransition:
		status = http.StatusBadRequest
	case operations.ErrForbidden:
		status = http.StatusForbidden
	case operations.ErrNotFound:
		status = http.StatusNotFound
	}

	body := map[string]string{"error": opError.Code}
	if opError.Field != "" {
		body["field"] = opError.Field
	}
	if opError.Message != "" {
		body["message"] = opError.Message
	}
	writeJSON(w, status, body)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return ""
}
