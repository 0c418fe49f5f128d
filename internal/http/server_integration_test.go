package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/abbakary/portals/internal/crypto"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/db/migrations"
	"github.com/abbakary/portals/internal/model"
	"github.com/abbakary/portals/internal/operations"
)

func openTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PORTAL_TEST_DB")
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		t.Skip("PORTAL_TEST_DB or DATABASE_URL not set")
		return nil
	}
	pool, err := db.NewPool(context.Background(), url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}

	migrationDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	if err := migrations.MigrateUp(migrationDB); err != nil {
		pool.Close()
		t.Fatalf("migrations failed: %v", err)
	}
	_ = migrationDB.Close()
	return pool
}

func seedAdmin(t *testing.T, store *db.Store, email, password string) {
	t.Helper()
	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	now := time.Now().UTC()
	err = store.Queries.CreateUser(context.Background(), model.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Root",
		LastName:     "Admin",
		Role:         model.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func login(t *testing.T, appURL, email, password string) (token string, profileID string) {
	t.Helper()
	resp := doReq(t, http.MethodPost, appURL+"/api/auth/token", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, resp.StatusCode)
	}
	var body struct {
		Token   string `json:"token"`
		Profile struct {
			ProfileID string `json:"profile_id"`
		} `json:"profile"`
	}
	decodeBody(t, resp, &body)
	return body.Token, body.Profile.ProfileID
}

func TestInspectionWorkflow(t *testing.T) {
	pool := openTestDB(t)
	if pool == nil {
		return
	}
	defer pool.Close()

	store := db.NewStore(pool)
	cfg := testConfig()
	server := NewServer(cfg, store, nil)
	app := httptest.NewServer(server.Router())
	defer app.Close()

	suffix := time.Now().Format("150405.000")
	adminEmail := "admin." + suffix + "@example.local"
	seedAdmin(t, store, adminEmail, "dev-password")

	seedItems := []operations.ItemSeed{
		{Code: "braking_system_pads", Title: "Brake pads", Description: "Pad wear", RequiresPhoto: true},
		{Code: "braking_system_lines", Title: "Brake lines", Description: "Line condition", RequiresPhoto: false},
	}
	if err := operations.SeedChecklist(context.Background(), store, seedItems); err != nil {
		t.Fatalf("seed checklist: %v", err)
	}

	// Re-seeding is an upsert: the second run must not duplicate rows or
	// shuffle display order.
	itemCount, err := store.Queries.CountChecklistItems(context.Background())
	if err != nil {
		t.Fatalf("count checklist items: %v", err)
	}
	if err := operations.SeedChecklist(context.Background(), store, seedItems); err != nil {
		t.Fatalf("reseed checklist: %v", err)
	}
	categories, err := store.Queries.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if len(categories) != 13 {
		t.Fatalf("expected 13 categories after reseed, got %d", len(categories))
	}
	for index, category := range categories {
		if category.DisplayOrder != index+1 {
			t.Fatalf("category %s display_order = %d, want %d", category.Code, category.DisplayOrder, index+1)
		}
	}
	if recount, err := store.Queries.CountChecklistItems(context.Background()); err != nil || recount != itemCount {
		t.Fatalf("reseed changed item count: %d -> %d (%v)", itemCount, recount, err)
	}

	items, err := store.Queries.ListChecklistItems(context.Background(), true)
	if err != nil || len(items) == 0 {
		t.Fatalf("list checklist items: %v (%d items)", err, len(items))
	}
	var itemID, secondItemID string
	for _, item := range items {
		switch item.Code {
		case "braking_system_pads":
			itemID = item.ID
		case "braking_system_lines":
			secondItemID = item.ID
		}
	}
	if itemID == "" || secondItemID == "" {
		t.Fatal("seeded checklist items not found")
	}

	adminToken, _ := login(t, app.URL, adminEmail, "dev-password")

	// Customer account with vehicle.
	customerEmail := "fleet." + suffix + "@example.local"
	resp := doReq(t, http.MethodPost, app.URL+"/api/customers", adminToken, map[string]interface{}{
		"email":      customerEmail,
		"password":   "dev-password",
		"first_name": "Dana",
		"last_name":  "Ops",
		"legal_name": "Dana Logistics LLC",
		"city":       "Trenton",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create customer: expected 201, got %d", resp.StatusCode)
	}
	var customer struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &customer)

	resp = doReq(t, http.MethodPost, app.URL+"/api/vehicles", adminToken, map[string]interface{}{
		"customer":      customer.ID,
		"vin":           "1FUJGLDR" + suffix,
		"license_plate": "TRK-" + suffix,
		"make":          "Freightliner",
		"model":         "Cascadia",
		"year":          2021,
		"vehicle_type":  "tractor",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create vehicle: expected 201, got %d", resp.StatusCode)
	}
	var vehicle struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &vehicle)

	// A second vehicle that never gets an assignment.
	resp = doReq(t, http.MethodPost, app.URL+"/api/vehicles", adminToken, map[string]interface{}{
		"customer":      customer.ID,
		"vin":           "3AKJHHDR" + suffix,
		"license_plate": "TRL-" + suffix,
		"make":          "Utility",
		"model":         "3000R",
		"year":          2019,
		"vehicle_type":  "trailer",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create second vehicle: expected 201, got %d", resp.StatusCode)
	}
	var spareVehicle struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &spareVehicle)

	// Inspector account and assignment.
	inspectorEmail := "inspector." + suffix + "@example.local"
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspectors", adminToken, map[string]interface{}{
		"email":      inspectorEmail,
		"password":   "dev-password",
		"first_name": "Iris",
		"last_name":  "Vega",
		"badge_id":   "BDG-" + suffix,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create inspector: expected 201, got %d", resp.StatusCode)
	}
	var inspector struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &inspector)

	resp = doReq(t, http.MethodPost, app.URL+"/api/assignments", adminToken, map[string]interface{}{
		"vehicle":       vehicle.ID,
		"inspector":     inspector.ID,
		"scheduled_for": time.Now().UTC().Format("2006-01-02"),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create assignment: expected 201, got %d", resp.StatusCode)
	}
	var assignment struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &assignment)

	// Same slot twice is rejected as a validation failure, not a conflict.
	resp = doReq(t, http.MethodPost, app.URL+"/api/assignments", adminToken, map[string]interface{}{
		"vehicle":       vehicle.ID,
		"inspector":     inspector.ID,
		"scheduled_for": time.Now().UTC().Format("2006-01-02"),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate assignment: expected 400, got %d", resp.StatusCode)
	}

	// A second inspector with no assignments.
	secondInspectorEmail := "inspector2." + suffix + "@example.local"
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspectors", adminToken, map[string]interface{}{
		"email":      secondInspectorEmail,
		"password":   "dev-password",
		"first_name": "Omar",
		"last_name":  "Bly",
		"badge_id":   "BDG2-" + suffix,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create second inspector: expected 201, got %d", resp.StatusCode)
	}
	var spareInspector struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &spareInspector)

	// Inspectors only see vehicles an assignment ties them to.
	inspectorToken, _ := login(t, app.URL, inspectorEmail, "dev-password")
	secondInspectorToken, _ := login(t, app.URL, secondInspectorEmail, "dev-password")
	for _, tc := range []struct {
		name        string
		token       string
		wantVehicle bool
	}{
		{"assigned inspector", inspectorToken, true},
		{"unassigned inspector", secondInspectorToken, false},
	} {
		resp = doReq(t, http.MethodGet, app.URL+"/api/vehicles", tc.token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s vehicle list: expected 200, got %d", tc.name, resp.StatusCode)
		}
		var vehicleRows []struct {
			ID string `json:"id"`
		}
		decodeBody(t, resp, &vehicleRows)
		found := false
		for _, row := range vehicleRows {
			if row.ID == vehicle.ID {
				found = true
			}
		}
		if found != tc.wantVehicle {
			t.Fatalf("%s sees assigned vehicle = %v, want %v", tc.name, found, tc.wantVehicle)
		}
	}

	// An assignment for a different vehicle cannot back the inspection.
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspections", inspectorToken, map[string]interface{}{
		"vehicle":    spareVehicle.ID,
		"assignment": assignment.ID,
		"status":     "draft",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("mismatched assignment: expected 400, got %d", resp.StatusCode)
	}

	// Inspector opens the inspection with a failing brake response and a
	// passing lines check.
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspections", inspectorToken, map[string]interface{}{
		"vehicle":    vehicle.ID,
		"assignment": assignment.ID,
		"status":     "in_progress",
		"item_responses": []map[string]interface{}{
			{"checklist_item": itemID, "result": "fail", "severity": 4, "notes": "Pads below minimum"},
			{"checklist_item": secondItemID, "result": "pass"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create inspection: expected 201, got %d", resp.StatusCode)
	}
	var inspection struct {
		ID            string `json:"id"`
		CustomerID    string `json:"customer"`
		Status        string `json:"status"`
		ItemResponses []struct {
			ChecklistItemID string `json:"checklist_item"`
		} `json:"item_responses"`
	}
	decodeBody(t, resp, &inspection)
	if inspection.CustomerID != customer.ID {
		t.Fatalf("inspection customer = %s, want %s (derived from vehicle)", inspection.CustomerID, customer.ID)
	}
	if len(inspection.ItemResponses) != 2 {
		t.Fatalf("expected 2 responses on create, got %d", len(inspection.ItemResponses))
	}

	// A deactivated inspector cannot be put in charge of the inspection.
	resp = doReq(t, http.MethodPut, app.URL+"/api/inspectors/"+spareInspector.ID, adminToken, map[string]interface{}{
		"is_active": false,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate inspector: expected 200, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodPut, app.URL+"/api/inspections/"+inspection.ID, adminToken, map[string]interface{}{
		"inspector": spareInspector.ID,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("inactive inspector on update: expected 400, got %d", resp.StatusCode)
	}

	// Sending item_responses on update replaces the whole set.
	resp = doReq(t, http.MethodPut, app.URL+"/api/inspections/"+inspection.ID, inspectorToken, map[string]interface{}{
		"item_responses": []map[string]interface{}{
			{"checklist_item": itemID, "result": "fail", "severity": 4, "notes": "Pads below minimum"},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace responses: expected 200, got %d", resp.StatusCode)
	}
	var replaced struct {
		ItemResponses []struct {
			ChecklistItemID string `json:"checklist_item"`
		} `json:"item_responses"`
	}
	decodeBody(t, resp, &replaced)
	if len(replaced.ItemResponses) != 1 || replaced.ItemResponses[0].ChecklistItemID != itemID {
		t.Fatalf("expected only the brake pad response to remain, got %+v", replaced.ItemResponses)
	}

	// Approving before submission is an invalid transition.
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspections/"+inspection.ID+"/approve", adminToken, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("approve before submit: expected 400, got %d", resp.StatusCode)
	}

	// Submit publishes the report.
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspections/"+inspection.ID+"/submit", inspectorToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", resp.StatusCode)
	}
	var submitted struct {
		Status         string  `json:"status"`
		CompletedAt    *string `json:"completed_at"`
		CustomerReport *struct {
			Summary string `json:"summary"`
		} `json:"customer_report"`
	}
	decodeBody(t, resp, &submitted)
	if submitted.Status != model.InspectionSubmitted {
		t.Fatalf("status = %s, want submitted", submitted.Status)
	}
	if submitted.CompletedAt == nil {
		t.Fatal("completed_at should be backfilled on submit")
	}
	if submitted.CustomerReport == nil || !strings.Contains(submitted.CustomerReport.Summary, "Critical issues detected:") {
		t.Fatalf("report summary missing critical issue header: %+v", submitted.CustomerReport)
	}
	if !strings.Contains(submitted.CustomerReport.Summary, "Brake pads (Severity 4)") {
		t.Fatalf("report summary missing failed item line: %q", submitted.CustomerReport.Summary)
	}

	// Admin approves.
	resp = doReq(t, http.MethodPost, app.URL+"/api/inspections/"+inspection.ID+"/approve", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d", resp.StatusCode)
	}
	var approved struct {
		Status string `json:"status"`
		Report string `json:"report"`
	}
	decodeBody(t, resp, &approved)
	if approved.Status != model.InspectionApproved {
		t.Fatalf("status = %s, want approved", approved.Status)
	}
	if !strings.Contains(approved.Report, "Critical issues detected:") {
		t.Fatalf("approve report = %q", approved.Report)
	}

	// The customer sees the inspection and report, but only their own.
	customerToken, _ := login(t, app.URL, customerEmail, "dev-password")
	resp = doReq(t, http.MethodGet, app.URL+"/api/inspections/"+inspection.ID, customerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("customer read: expected 200, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/inspections", customerToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("customer list: expected 200, got %d", resp.StatusCode)
	}
	var listed []struct {
		CustomerID string `json:"customer"`
	}
	decodeBody(t, resp, &listed)
	for _, row := range listed {
		if row.CustomerID != customer.ID {
			t.Fatalf("customer list leaked row for customer %s", row.CustomerID)
		}
	}

	// Public reference data needs no token.
	resp = doReq(t, http.MethodGet, app.URL+"/api/categories", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("categories: expected 200, got %d", resp.StatusCode)
	}
	var publicCategories []struct {
		Code  string                   `json:"code"`
		Items []map[string]interface{} `json:"items"`
	}
	decodeBody(t, resp, &publicCategories)
	if len(publicCategories) != 13 {
		t.Fatalf("expected 13 categories, got %d", len(publicCategories))
	}

	// Admin dashboard counts.
	resp = doReq(t, http.MethodGet, app.URL+"/api/stats", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats map[string]int64
	decodeBody(t, resp, &stats)
	if stats["vehicles"] < 1 || stats["inspections"] < 1 {
		t.Fatalf("stats too low: %v", stats)
	}
}
