package incidents

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-coordinator-api-server/internal/fleet"
	"fleet-coordinator-api-server/internal/models"
)

// scenarioTruckStore backs both the fleet manager and the incident
// listing's truck resolution in the admin walkthrough below.
type scenarioTruckStore struct {
	trucks map[string]models.Truck
}

func (s *scenarioTruckStore) Insert(ctx context.Context, truck models.Truck) (models.Truck, error) {
	s.trucks[truck.TruckID] = truck
	return truck, nil
}

func (s *scenarioTruckStore) FindByID(ctx context.Context, truckID string) (models.Truck, error) {
	truck, ok := s.trucks[truckID]
	if !ok {
		return models.Truck{}, errRecordNotFound
	}
	return truck, nil
}

func (s *scenarioTruckStore) FindAll(ctx context.Context) ([]models.Truck, error) {
	out := make([]models.Truck, 0, len(s.trucks))
	for _, t := range s.trucks {
		out = append(out, t)
	}
	return out, nil
}

func (s *scenarioTruckStore) CountByPlate(ctx context.Context, plate string) (int64, error) {
	var count int64
	for _, t := range s.trucks {
		if t.Plate == plate {
			count++
		}
	}
	return count, nil
}

func (s *scenarioTruckStore) UpdateDetails(ctx context.Context, truckID, plate, route, status string) (models.Truck, error) {
	truck, ok := s.trucks[truckID]
	if !ok {
		return models.Truck{}, errRecordNotFound
	}
	truck.Plate, truck.Route, truck.Status = plate, route, status
	s.trucks[truckID] = truck
	return truck, nil
}

func (s *scenarioTruckStore) UpdateAssignment(ctx context.Context, truckID, driverID, scheduleStart, scheduleEnd string, workDays []string) (models.Truck, error) {
	truck, ok := s.trucks[truckID]
	if !ok {
		return models.Truck{}, errRecordNotFound
	}
	truck.DriverID = driverID
	truck.ScheduleStart = scheduleStart
	truck.ScheduleEnd = scheduleEnd
	truck.WorkDays = workDays
	s.trucks[truckID] = truck
	return truck, nil
}

func (s *scenarioTruckStore) UpdatePosition(ctx context.Context, truckID string, pos models.Position, at time.Time) (models.Truck, error) {
	truck, ok := s.trucks[truckID]
	if !ok {
		return models.Truck{}, errRecordNotFound
	}
	truck.LastPosition = &pos
	truck.ReportedAt = &at
	s.trucks[truckID] = truck
	return truck, nil
}

func (s *scenarioTruckStore) Delete(ctx context.Context, truckID string) error {
	if _, ok := s.trucks[truckID]; !ok {
		return errRecordNotFound
	}
	delete(s.trucks, truckID)
	return nil
}

type scenarioDirectory struct {
	conductors []models.User
}

func (s *scenarioDirectory) FindConductors(ctx context.Context) ([]models.User, error) {
	return s.conductors, nil
}

// TestAdminWalkthrough follows one truck from registration through an
// incident being filed, worked, resolved and reopened.
func TestAdminWalkthrough(t *testing.T) {
	ctx := context.Background()
	trucks := &scenarioTruckStore{trucks: make(map[string]models.Truck)}
	directory := &scenarioDirectory{conductors: []models.User{
		{UserID: "D1", Name: "Diego", Role: models.RoleConductor},
	}}
	manager := fleet.NewManager(trucks, directory)
	lifecycle := NewLifecycle(newFakeIncidentStore(), trucks, nil)

	truck, err := manager.CreateTruck(ctx, "ABC123D", "Ruta 4", models.TruckActive)
	if err != nil {
		t.Fatalf("CreateTruck = %v", err)
	}

	var verr *fleet.ValidationError
	if _, err := manager.CreateTruck(ctx, "abc123d", "Ruta 5", models.TruckActive); !errors.As(err, &verr) || verr.Field != "placa" {
		t.Fatalf("lowercase plate accepted: %v", err)
	}

	if _, err := manager.Assign(ctx, truck.TruckID, "D1", "06:00", "20:00", []string{"lunes", "miercoles", "viernes"}); err != nil {
		t.Fatalf("Assign = %v", err)
	}
	assigned, unassigned, err := manager.Partition(ctx)
	if err != nil {
		t.Fatalf("Partition = %v", err)
	}
	if len(assigned) != 1 || len(unassigned) != 0 {
		t.Fatalf("partition = %d/%d, want the truck on the assigned side", len(assigned), len(unassigned))
	}

	incident, err := lifecycle.Report(ctx, "D1", truck.TruckID, "Falla de motor", nil, "")
	if err != nil {
		t.Fatalf("Report = %v", err)
	}
	if incident.State != models.IncidentPending {
		t.Fatalf("fresh incident state = %q", incident.State)
	}

	pending, err := lifecycle.PendingForDriver(ctx, "D1")
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingForDriver = %v (%d)", err, len(pending))
	}

	if _, err := lifecycle.Transition(ctx, incident.IncidentID, models.IncidentResolved); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pendiente straight to resuelta must be rejected, got %v", err)
	}

	for _, target := range []string{models.IncidentResolved + "!", ""} {
		if _, err := lifecycle.Transition(ctx, incident.IncidentID, target); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Transition to %q = %v, want ErrInvalidTransition", target, err)
		}
	}

	if _, err := lifecycle.Transition(ctx, incident.IncidentID, models.IncidentInProgress); err != nil {
		t.Fatalf("to en_proceso: %v", err)
	}
	resolved, err := lifecycle.Transition(ctx, incident.IncidentID, models.IncidentResolved)
	if err != nil {
		t.Fatalf("to resuelta: %v", err)
	}
	if resolved.State != models.IncidentResolved {
		t.Fatalf("post-write state = %q", resolved.State)
	}

	pending, err = lifecycle.PendingForDriver(ctx, "D1")
	if err != nil || len(pending) != 0 {
		t.Fatalf("resolved incident still pending: %v (%d)", err, len(pending))
	}

	reopened, err := lifecycle.Transition(ctx, incident.IncidentID, models.IncidentPending)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.State != models.IncidentPending {
		t.Fatalf("reopened state = %q", reopened.State)
	}
}
