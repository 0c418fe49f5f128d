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

type customerPayload struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Organization string `json:"organization,omitempty"`
	JobTitle     string `json:"job_title,omitempty"`
	LegalName    string `json:"legal_name"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	AddressLine1 string `json:"address_line1,omitempty"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	Country      string `json:"country,omitempty"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func customerResponse(customer model.Customer, user model.User) customerPayload {
	return customerPayload{
		ID:           customer.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		PhoneNumber:  user.PhoneNumber,
		Organization: user.Organization,
		JobTitle:     user.JobTitle,
		LegalName:    customer.LegalName,
		ContactEmail: customer.ContactEmail,
		ContactPhone: customer.ContactPhone,
		AddressLine1: customer.AddressLine1,
		AddressLine2: customer.AddressLine2,
		City:         customer.City,
		State:        customer.State,
		PostalCode:   customer.PostalCode,
		Country:      customer.Country,
		Notes:        customer.Notes,
		CreatedAt:    customer.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    customer.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.Queries.ListCustomers(r.Context(), queryLimit(r, 200))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	resp := make([]customerPayload, 0, len(customers))
	for _, customer := range customers {
		user, err := s.store.Queries.GetUserByID(r.Context(), customer.UserID)
		if err != nil {
			continue
		}
		resp = append(resp, customerResponse(customer, user))
	}
	writeJSON(w, http.StatusOK, resp)
}

type createCustomerRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PhoneNumber  string `json:"phone_number"`
	Organization string `json:"organization"`
	JobTitle     string `json:"job_title"`
	LegalName    string `json:"legal_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" || req.LegalName == "" {
		writeError(w, http.StatusBadRequest, "missing_fields")
		return
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
		Role:         model.RoleCustomer,
		PhoneNumber:  req.PhoneNumber,
		Organization: req.Organization,
		JobTitle:     req.JobTitle,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	customer := model.Customer{
		ID:           uuid.NewString(),
		UserID:       user.ID,
		LegalName:    req.LegalName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Notes:        req.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.WithTx(r.Context(), func(q *db.Queries) error {
		if err := q.CreateUser(r.Context(), user); err != nil {
			return err
		}
		return q.CreateCustomer(r.Context(), customer)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			writeError(w, http.StatusBadRequest, "duplicate_value")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	writeJSON(w, http.StatusCreated, customerResponse(customer, user))
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	customer, err := s.store.Queries.GetCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	user, err := s.store.Queries.GetUserByID(r.Context(), customer.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, customerResponse(customer, user))
}

type updateCustomerRequest struct {
	Email        *string `json:"email,omitempty"`
	Password     *string `json:"password,omitempty"`
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	Organization *string `json:"organization,omitempty"`
	JobTitle     *string `json:"job_title,omitempty"`
	LegalName    *string `json:"legal_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
	Country      *string `json:"country,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")

	var req updateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request")
		return
	}

	current, err := s.store.Queries.GetCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	userUpdate := db.UserUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Organization: req.Organization,
		JobTitle:     req.JobTitle,
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
	customerUpdate := db.CustomerUpdate{
		LegalName:    req.LegalName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		Notes:        req.Notes,
	}

	var (
		user     model.User
		customer model.Customer
	)
	err = s.store.WithTx(r.Context(), func(q *db.Queries) error {
		var err error
		user, err = q.UpdateUser(r.Context(), current.UserID, userUpdate)
		if err != nil {
			return err
		}
		customer, err = q.UpdateCustomer(r.Context(), customerID, customerUpdate)
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

	writeJSON(w, http.StatusOK, customerResponse(customer, user))
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	customer, err := s.store.Queries.GetCustomer(r.Context(), customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "customer_not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}

	// Removing the user cascades to the customer profile.
	deleted, err := s.store.Queries.DeleteUser(r.Context(), customer.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "customer_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
