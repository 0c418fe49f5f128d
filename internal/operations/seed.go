package operations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

type sectionSeed struct {
	Code        string
	Name        string
	Description string
}

// checklistSections is the canonical inspection taxonomy. Display order
// is the 1-indexed position in this list.
var checklistSections = []sectionSeed{
	{"pre_trip", "Pre-Trip Documentation", "Vehicle identification, odometer, and preliminary condition checks."},
	{"exterior_structure", "Exterior & Structure", "Body, frame, and chassis observations."},
	{"tires_wheels_axles", "Tires, Wheels, Axles", "Pressure, tread, and wheel assembly."},
	{"braking_system", "Braking System", "Service brakes, parking brake, and lines."},
	{"suspension_steering", "Suspension & Steering", "Springs, shocks, linkage, and alignment."},
	{"engine_powertrain", "Engine & Powertrain", "Fluids, belts, filters, exhaust, and drivetrain."},
	{"electrical_lighting", "Electrical & Lighting", "Lights, wiring, battery, horn."},
	{"cabin_interior", "Cabin & Interior", "Seat belts, mirrors, wipers, gauges, emergency gear."},
	{"coupling_connections", "Coupling & Connections", "Fifth wheel, kingpin, chains, air/electrical lines."},
	{"trailer_equipment", "Trailer-Specific Equipment", "Doors, landing gear, refrigeration, load devices."},
	{"safety_equipment", "Safety Equipment", "Extinguishers, triangles, first aid kits."},
	{"operational_tests", "Operational Tests", "Functional checks for brakes, steering, engine."},
	{"under_vehicle", "Under-Vehicle Inspection", "Fuel tanks, lines, and structural integrity."},
}

// ItemSeed is an optional checklist item to seed under the section whose
// code prefixes the item code.
type ItemSeed struct {
	Code          string
	Title         string
	Description   string
	RequiresPhoto bool
}

// SeedChecklist upserts the canonical category structure and any provided
// items in a single transaction. Safe to run on every startup.
func SeedChecklist(ctx context.Context, store *db.Store, items []ItemSeed) error {
	now := time.Now().UTC()
	return store.WithTx(ctx, func(q *db.Queries) error {
		for index, section := range checklistSections {
			category, err := q.UpsertCategory(ctx, model.InspectionCategory{
				ID:           uuid.NewString(),
				Code:         section.Code,
				Name:         section.Name,
				Description:  section.Description,
				DisplayOrder: index + 1,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			if err != nil {
				return err
			}
			for _, item := range items {
				if !strings.HasPrefix(item.Code, section.Code) {
					continue
				}
				_, err := q.UpsertChecklistItem(ctx, model.ChecklistItem{
					ID:            uuid.NewString(),
					CategoryID:    category.ID,
					Code:          item.Code,
					Title:         item.Title,
					Description:   item.Description,
					RequiresPhoto: item.RequiresPhoto,
					IsActive:      true,
					CreatedAt:     now,
					UpdatedAt:     now,
				})
				if err != nil {
					return err
				}
			}
		}
		return nil
	})
}
