package access

import (
	"testing"

	"github.com/abbakary/portals/internal/model"
)

func TestCan(t *testing.T) {
	cases := []struct {
		name     string
		role     string
		resource Resource
		action   Action
		want     bool
	}{
		{"admin deletes customers", model.RoleAdmin, ResourceCustomer, ActionDelete, true},
		{"admin approves inspections", model.RoleAdmin, ResourceInspection, ActionApprove, true},
		{"inspector cannot approve", model.RoleInspector, ResourceInspection, ActionApprove, false},
		{"inspector submits inspections", model.RoleInspector, ResourceInspection, ActionSubmit, true},
		{"inspector creates vehicles", model.RoleInspector, ResourceVehicle, ActionCreate, true},
		{"inspector cannot delete vehicles", model.RoleInspector, ResourceVehicle, ActionDelete, false},
		{"inspector cannot touch customers", model.RoleInspector, ResourceCustomer, ActionList, false},
		{"inspector cannot create assignments", model.RoleInspector, ResourceAssignment, ActionCreate, false},
		{"customer lists own vehicles", model.RoleCustomer, ResourceVehicle, ActionList, true},
		{"customer cannot create vehicles", model.RoleCustomer, ResourceVehicle, ActionCreate, false},
		{"customer cannot see assignments", model.RoleCustomer, ResourceAssignment, ActionList, false},
		{"customer reads inspections", model.RoleCustomer, ResourceInspection, ActionGet, true},
		{"customer cannot submit", model.RoleCustomer, ResourceInspection, ActionSubmit, false},
		{"unknown role has nothing", "auditor", ResourceVehicle, ActionList, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Principal{Role: tc.role}
			if got := p.Can(tc.resource, tc.action); got != tc.want {
				t.Fatalf("Can(%s, %s) for %s = %v, want %v", tc.resource, tc.action, tc.role, got, tc.want)
			}
		})
	}
}

func TestReadScope(t *testing.T) {
	t.Run("admin unrestricted", func(t *testing.T) {
		scope, ok := Principal{Role: model.RoleAdmin}.ReadScope()
		if !ok {
			t.Fatal("admin scope should be visible")
		}
		if scope.CustomerID != "" || scope.InspectorID != "" {
			t.Fatalf("admin scope should be empty, got %+v", scope)
		}
	})

	t.Run("customer scoped to own profile", func(t *testing.T) {
		scope, ok := Principal{Role: model.RoleCustomer, CustomerID: "cust-1"}.ReadScope()
		if !ok {
			t.Fatal("customer with profile should have a scope")
		}
		if scope.CustomerID != "cust-1" {
			t.Fatalf("scope.CustomerID = %q, want cust-1", scope.CustomerID)
		}
	})

	t.Run("inspector scoped to own profile", func(t *testing.T) {
		scope, ok := Principal{Role: model.RoleInspector, InspectorID: "insp-1"}.ReadScope()
		if !ok {
			t.Fatal("inspector with profile should have a scope")
		}
		if scope.InspectorID != "insp-1" {
			t.Fatalf("scope.InspectorID = %q, want insp-1", scope.InspectorID)
		}
	})

	t.Run("missing profile sees nothing", func(t *testing.T) {
		if _, ok := (Principal{Role: model.RoleCustomer}).ReadScope(); ok {
			t.Fatal("customer without profile should see no rows")
		}
		if _, ok := (Principal{Role: model.RoleInspector}).ReadScope(); ok {
			t.Fatal("inspector without profile should see no rows")
		}
	})
}
