// Package access decides what an authenticated principal may do and which
// rows it may see. Resolution happens once per request: claims plus the
// role profile become a Principal, handlers check Can and ReadScope.
package access

import "github.com/abbakary/portals/internal/model"

type Resource string

const (
	ResourceCustomer   Resource = "customer"
	ResourceInspector  Resource = "inspector"
	ResourceVehicle    Resource = "vehicle"
	ResourceAssignment Resource = "assignment"
	ResourceInspection Resource = "inspection"
)

type Action string

const (
	ActionList    Action = "list"
	ActionGet     Action = "get"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
)

// Principal is the resolved caller. CustomerID / InspectorID hold the
// matching profile row id and stay empty for other roles, or when the
// profile row is missing.
type Principal struct {
	UserID      string
	Role        string
	CustomerID  string
	InspectorID string
}

// RowScope restricts reads to one customer's or one inspector's rows.
// For vehicles the inspector scope means assigned vehicles.
type RowScope struct {
	CustomerID  string
	InspectorID string
}

var rolePermissions = map[string]map[Resource][]Action{
	model.RoleAdmin: {
		ResourceCustomer:   {ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete},
		ResourceInspector:  {ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete},
		ResourceVehicle:    {ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete},
		ResourceAssignment: {ActionList, ActionGet, ActionCreate, ActionUpdate, ActionDelete},
		ResourceInspection: {ActionList, ActionGet, ActionCreate, ActionUpdate, ActionSubmit, ActionApprove},
	},
	model.RoleInspector: {
		ResourceVehicle:    {ActionList, ActionGet, ActionCreate},
		ResourceAssignment: {ActionList, ActionGet},
		ResourceInspection: {ActionList, ActionGet, ActionCreate, ActionUpdate, ActionSubmit},
	},
	model.RoleCustomer: {
		ResourceVehicle:    {ActionList, ActionGet},
		ResourceInspection: {ActionList, ActionGet},
	},
}

// Can reports whether the principal's role permits an action on a
// resource. Row-level visibility is a separate concern (ReadScope).
func (p Principal) Can(resource Resource, action Action) bool {
	for _, allowed := range rolePermissions[p.Role][resource] {
		if allowed == action {
			return true
		}
	}
	return false
}

// ReadScope returns the row scope the principal's reads are limited to.
// ok is false when the principal can see no rows at all: a customer or
// inspector whose profile row is missing degrades to an empty scope
// rather than an error.
func (p Principal) ReadScope() (RowScope, bool) {
	switch p.Role {
	case model.RoleAdmin:
		return RowScope{}, true
	case model.RoleCustomer:
		if p.CustomerID == "" {
			return RowScope{}, false
		}
		return RowScope{CustomerID: p.CustomerID}, true
	case model.RoleInspector:
		if p.InspectorID == "" {
			return RowScope{}, false
		}
		return RowScope{InspectorID: p.InspectorID}, true
	}
	return RowScope{}, false
}
