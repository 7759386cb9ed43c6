// server/internal/fleet/manager.go
package fleet

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/models"

	"github.com/google/uuid"
)

var (
	// 3 uppercase letters, 3 digits, 1 uppercase letter, e.g. ABC123D.
	plateRegex = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}[A-Z]$`)
	timeRegex  = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

const (
	DefaultScheduleStart = "05:00"
	DefaultScheduleEnd   = "22:00"
)

// ValidationError names the violated field so the caller can correct it.
// It is always raised before any state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TruckStore is the persistence collaborator the manager writes through.
// Writes are atomic-or-failed and return the post-write record.
type TruckStore interface {
	Insert(ctx context.Context, truck models.Truck) (models.Truck, error)
	FindByID(ctx context.Context, truckID string) (models.Truck, error)
	FindAll(ctx context.Context) ([]models.Truck, error)
	CountByPlate(ctx context.Context, plate string) (int64, error)
	UpdateDetails(ctx context.Context, truckID, plate, route, status string) (models.Truck, error)
	UpdateAssignment(ctx context.Context, truckID, driverID, scheduleStart, scheduleEnd string, workDays []string) (models.Truck, error)
	Delete(ctx context.Context, truckID string) error
}

// DriverDirectory lists the conductor accounts. It is the source of truth
// for which drivers exist; the manager only narrows it to the uncommitted
// ones when offering candidates.
type DriverDirectory interface {
	FindConductors(ctx context.Context) ([]models.User, error)
}

// Manager owns the truck↔driver↔schedule relationship.
type Manager struct {
	trucks  TruckStore
	drivers DriverDirectory
}

func NewManager(trucks TruckStore, drivers DriverDirectory) *Manager {
	return &Manager{trucks: trucks, drivers: drivers}
}

func validateDetails(plate, route, status string) error {
	if !plateRegex.MatchString(plate) {
		return &ValidationError{Field: "placa", Reason: "formato de placa no válido (ej: ABC123D)"}
	}
	if len(route) < 2 {
		return &ValidationError{Field: "ruta", Reason: "la ruta debe tener al menos 2 caracteres"}
	}
	if status != models.TruckActive && status != models.TruckInactive {
		return &ValidationError{Field: "estado", Reason: "estado no válido"}
	}
	return nil
}

func validateSchedule(start, end string, workDays []string) error {
	if !timeRegex.MatchString(start) {
		return &ValidationError{Field: "horarioInicio", Reason: "formato de hora no válido (HH:mm)"}
	}
	if !timeRegex.MatchString(end) {
		return &ValidationError{Field: "horarioFin", Reason: "formato de hora no válido (HH:mm)"}
	}
	for _, day := range workDays {
		valid := false
		for _, known := range models.WeekDays {
			if day == known {
				valid = true
				break
			}
		}
		if !valid {
			return &ValidationError{Field: "diasTrabajo", Reason: "días de trabajo no válidos"}
		}
	}
	return nil
}

// CreateTruck validates and persists a new, unassigned truck with the
// default schedule.
func (m *Manager) CreateTruck(ctx context.Context, plate, route, status string) (models.Truck, error) {
	if err := validateDetails(plate, route, status); err != nil {
		return models.Truck{}, err
	}

	count, err := m.trucks.CountByPlate(ctx, plate)
	if err != nil {
		return models.Truck{}, err
	}
	if count > 0 {
		return models.Truck{}, &ValidationError{Field: "placa", Reason: "la placa ya está registrada"}
	}

	now := time.Now()
	truck := models.Truck{
		TruckID:       fmt.Sprintf("TRK-%s", uuid.New().String()[:8]),
		Plate:         plate,
		Route:         route,
		Status:        status,
		ScheduleStart: DefaultScheduleStart,
		ScheduleEnd:   DefaultScheduleEnd,
		WorkDays:      append([]string(nil), models.DefaultWorkDays...),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return m.trucks.Insert(ctx, truck)
}

// UpdateTruck overwrites plate, route and status after full validation.
func (m *Manager) UpdateTruck(ctx context.Context, truckID, plate, route, status string) (models.Truck, error) {
	if err := validateDetails(plate, route, status); err != nil {
		return models.Truck{}, err
	}
	return m.trucks.UpdateDetails(ctx, truckID, plate, route, status)
}

// DeleteTruck is a hard delete. The caller is expected to have confirmed
// destructive intent and checked for unresolved incidents first; the
// manager itself only deletes.
func (m *Manager) DeleteTruck(ctx context.Context, truckID string) error {
	return m.trucks.Delete(ctx, truckID)
}

// Assign updates the driver and schedule of a truck in one all-or-nothing
// write. An empty driverID explicitly clears the assignment, which is a
// valid state, not an error. Omitted schedule fields fall back to the
// defaults. The authoritative post-write truck is re-read from the store
// rather than trusting any in-memory copy.
//
// Exclusivity note: the manager verifies the driver exists with the
// conductor role but relies on the directory-backed candidate list for
// exclusivity; the store itself does not prevent a driver ending up on
// two trucks through concurrent writers.
func (m *Manager) Assign(ctx context.Context, truckID, driverID, scheduleStart, scheduleEnd string, workDays []string) (models.Truck, error) {
	if scheduleStart == "" {
		scheduleStart = DefaultScheduleStart
	}
	if scheduleEnd == "" {
		scheduleEnd = DefaultScheduleEnd
	}
	if len(workDays) == 0 {
		workDays = append([]string(nil), models.DefaultWorkDays...)
	}
	if err := validateSchedule(scheduleStart, scheduleEnd, workDays); err != nil {
		return models.Truck{}, err
	}

	if driverID != "" {
		conductors, err := m.drivers.FindConductors(ctx)
		if err != nil {
			return models.Truck{}, err
		}
		found := false
		for _, c := range conductors {
			if c.UserID == driverID {
				found = true
				break
			}
		}
		if !found {
			return models.Truck{}, &ValidationError{Field: "conductor", Reason: "el conductor no existe"}
		}
	}

	if _, err := m.trucks.UpdateAssignment(ctx, truckID, driverID, scheduleStart, scheduleEnd, workDays); err != nil {
		return models.Truck{}, err
	}
	return m.trucks.FindByID(ctx, truckID)
}

// List returns every truck as the store last wrote it.
func (m *Manager) List(ctx context.Context) ([]models.Truck, error) {
	return m.trucks.FindAll(ctx)
}

// Truck re-reads one truck from the store.
func (m *Manager) Truck(ctx context.Context, truckID string) (models.Truck, error) {
	return m.trucks.FindByID(ctx, truckID)
}

// Partition splits all trucks into assigned and unassigned, both in
// natural route order. It is recomputed on every call: a truck can move
// between partitions on any write, so nothing here is cached.
func (m *Manager) Partition(ctx context.Context) (assigned, unassigned []models.Truck, err error) {
	trucks, err := m.trucks.FindAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	assigned = make([]models.Truck, 0, len(trucks))
	unassigned = make([]models.Truck, 0, len(trucks))
	for _, t := range trucks {
		if t.Assigned() {
			assigned = append(assigned, t)
		} else {
			unassigned = append(unassigned, t)
		}
	}

	sort.SliceStable(assigned, func(i, j int) bool {
		return listview.ByRouteIndex(assigned[i].Route, assigned[j].Route)
	})
	sort.SliceStable(unassigned, func(i, j int) bool {
		return listview.ByRouteIndex(unassigned[i].Route, unassigned[j].Route)
	})
	return assigned, unassigned, nil
}

// AvailableDrivers returns conductors not already committed to a truck.
// An already-committed driver is never re-offered as a candidate.
func (m *Manager) AvailableDrivers(ctx context.Context) ([]models.User, error) {
	conductors, err := m.drivers.FindConductors(ctx)
	if err != nil {
		return nil, err
	}
	trucks, err := m.trucks.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	committed := make(map[string]bool, len(trucks))
	for _, t := range trucks {
		if t.Assigned() {
			committed[t.DriverID] = true
		}
	}

	available := make([]models.User, 0, len(conductors))
	for _, c := range conductors {
		if !committed[c.UserID] {
			available = append(available, c)
		}
	}
	return available, nil
}
