package model

import "time"

const (
	RoleAdmin     = "admin"
	RoleInspector = "inspector"
	RoleCustomer  = "customer"
)

const (
	AssignmentAssigned   = "assigned"
	AssignmentInProgress = "in_progress"
	AssignmentCompleted  = "completed"
)

const (
	InspectionDraft      = "draft"
	InspectionInProgress = "in_progress"
	InspectionSubmitted  = "submitted"
	InspectionApproved   = "approved"
)

const (
	ResultPass = "pass"
	ResultFail = "fail"
	ResultNA   = "not_applicable"
)

// User is the authenticated principal. Role is fixed at creation; the
// role-specific extension lives in Customer or InspectorProfile.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	PhoneNumber  string
	Organization string
	JobTitle     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RefreshSession struct {
	ID        string
	UserID    string
	TokenHash string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
	UserAgent *string
	IPAddress *string
}

type Customer struct {
	ID           string
	UserID       string
	LegalName    string
	ContactEmail string
	ContactPhone string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type InspectorProfile struct {
	ID                  string
	UserID              string
	BadgeID             string
	Certifications      string
	IsActive            bool
	MaxDailyInspections int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Vehicle struct {
	ID                string
	CustomerID        string
	VIN               string
	LicensePlate      string
	Make              string
	Model             string
	Year              int
	VehicleType       string
	AxleConfiguration string
	Mileage           int
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type VehicleAssignment struct {
	ID           string
	VehicleID    string
	InspectorID  string
	AssignedBy   *string
	ScheduledFor time.Time
	Status       string
	Remarks      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type InspectionCategory struct {
	ID           string
	Code         string
	Name         string
	Description  string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ChecklistItem struct {
	ID            string
	CategoryID    string
	Code          string
	Title         string
	Description   string
	RequiresPhoto bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Inspection struct {
	ID              string
	Reference       string
	AssignmentID    *string
	VehicleID       string
	CustomerID      string
	InspectorID     string
	Status          string
	StartedAt       *time.Time
	CompletedAt     *time.Time
	OdometerReading int
	GeneralNotes    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type ItemResponse struct {
	ID              string
	InspectionID    string
	ChecklistItemID string
	Result          string
	Severity        int
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type InspectionPhoto struct {
	ID         string
	ResponseID string
	ImagePath  string
	Caption    string
	CreatedAt  time.Time
}

type CustomerReport struct {
	ID                 string
	InspectionID       string
	Summary            string
	RecommendedActions string
	PublishedAt        time.Time
	UpdatedAt          time.Time
}

// ResponseDetail is an item response joined with its checklist item and
// category, in report iteration order (category display order, item code).
type ResponseDetail struct {
	Response      ItemResponse
	ItemCode      string
	ItemTitle     string
	RequiresPhoto bool
	CategoryCode  string
	CategoryName  string
	DisplayOrder  int
	Photos        []InspectionPhoto
}
