package incidents

import (
	"context"
	"errors"
	"testing"

	"fleet-coordinator-api-server/internal/models"
)

type fakeIncidentStore struct {
	incidents map[string]models.Incident
	order     []string
}

func newFakeIncidentStore() *fakeIncidentStore {
	return &fakeIncidentStore{incidents: make(map[string]models.Incident)}
}

var errRecordNotFound = errors.New("record not found")

func (f *fakeIncidentStore) Insert(ctx context.Context, incident models.Incident) (models.Incident, error) {
	f.incidents[incident.IncidentID] = incident
	f.order = append(f.order, incident.IncidentID)
	return incident, nil
}

func (f *fakeIncidentStore) FindByID(ctx context.Context, incidentID string) (models.Incident, error) {
	incident, ok := f.incidents[incidentID]
	if !ok {
		return models.Incident{}, errRecordNotFound
	}
	return incident, nil
}

func (f *fakeIncidentStore) FindAll(ctx context.Context) ([]models.Incident, error) {
	out := make([]models.Incident, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.incidents[id])
	}
	return out, nil
}

func (f *fakeIncidentStore) findOpen(match func(models.Incident) bool) []models.Incident {
	var out []models.Incident
	for _, id := range f.order {
		inc := f.incidents[id]
		if inc.State != models.IncidentResolved && match(inc) {
			out = append(out, inc)
		}
	}
	return out
}

func (f *fakeIncidentStore) FindOpenByDriver(ctx context.Context, driverID string) ([]models.Incident, error) {
	return f.findOpen(func(inc models.Incident) bool { return inc.DriverID == driverID }), nil
}

func (f *fakeIncidentStore) FindOpenByTruck(ctx context.Context, truckID string) ([]models.Incident, error) {
	return f.findOpen(func(inc models.Incident) bool { return inc.TruckID == truckID }), nil
}

func (f *fakeIncidentStore) UpdateState(ctx context.Context, incidentID, state string) (models.Incident, error) {
	incident, ok := f.incidents[incidentID]
	if !ok {
		return models.Incident{}, errRecordNotFound
	}
	incident.State = state
	f.incidents[incidentID] = incident
	return incident, nil
}

type fakeTruckResolver struct {
	routes map[string]string
}

func (f *fakeTruckResolver) FindByID(ctx context.Context, truckID string) (models.Truck, error) {
	route, ok := f.routes[truckID]
	if !ok {
		return models.Truck{}, errRecordNotFound
	}
	return models.Truck{TruckID: truckID, Route: route}, nil
}

type fakeMediaStore struct {
	uploads int
}

func (f *fakeMediaStore) Upload(ctx context.Context, payload []byte, fileName, fileType string) (models.MediaPointer, error) {
	f.uploads++
	return models.MediaPointer{ID: fileName, URL: "https://media.test/" + fileName, FileName: fileName, FileType: fileType}, nil
}

func newTestLifecycle(routes map[string]string) (*Lifecycle, *fakeIncidentStore, *fakeMediaStore) {
	store := newFakeIncidentStore()
	media := &fakeMediaStore{}
	return NewLifecycle(store, &fakeTruckResolver{routes: routes}, media), store, media
}

func TestReportEmptyDescription(t *testing.T) {
	lifecycle, store, _ := newTestLifecycle(nil)

	for _, desc := range []string{"", "   ", "\n\t"} {
		if _, err := lifecycle.Report(context.Background(), "d-1", "t-1", desc, nil, ""); !errors.Is(err, ErrEmptyDescription) {
			t.Errorf("Report(%q) = %v, want ErrEmptyDescription", desc, err)
		}
	}
	if len(store.incidents) != 0 {
		t.Error("rejected report must not reach the store")
	}
}

func TestReportAlwaysStartsPending(t *testing.T) {
	lifecycle, _, media := newTestLifecycle(nil)

	incident, err := lifecycle.Report(context.Background(), "d-1", "t-1", "Falla de motor", nil, "")
	if err != nil {
		t.Fatalf("Report = %v", err)
	}
	if incident.State != models.IncidentPending {
		t.Errorf("new incident state = %q, want %q", incident.State, models.IncidentPending)
	}
	if incident.Image != nil {
		t.Error("report without image must not carry a media pointer")
	}
	if media.uploads != 0 {
		t.Errorf("uploads = %d, want 0", media.uploads)
	}
}

func TestReportWithImage(t *testing.T) {
	lifecycle, _, media := newTestLifecycle(nil)

	incident, err := lifecycle.Report(context.Background(), "d-1", "t-1", "Llanta baja", []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("Report = %v", err)
	}
	if incident.Image == nil {
		t.Fatal("report with image must carry a media pointer")
	}
	if incident.Image.FileType != "image/jpeg" {
		t.Errorf("pointer file type = %q, want image/jpeg", incident.Image.FileType)
	}
	if media.uploads != 1 {
		t.Errorf("uploads = %d, want 1", media.uploads)
	}
}

func TestTransitionMatrix(t *testing.T) {
	states := []string{models.IncidentPending, models.IncidentInProgress, models.IncidentResolved}
	allowed := map[string]bool{
		models.IncidentPending + ">" + models.IncidentInProgress: true,
		models.IncidentInProgress + ">" + models.IncidentResolved: true,
		models.IncidentInProgress + ">" + models.IncidentPending:  true,
		models.IncidentResolved + ">" + models.IncidentPending:    true,
	}

	for _, from := range states {
		for _, to := range states {
			t.Run(from+" to "+to, func(t *testing.T) {
				lifecycle, store, _ := newTestLifecycle(nil)
				store.Insert(context.Background(), models.Incident{IncidentID: "INC-1", State: from})

				updated, err := lifecycle.Transition(context.Background(), "INC-1", to)
				if allowed[from+">"+to] {
					if err != nil {
						t.Fatalf("Transition(%s, %s) = %v, want success", from, to, err)
					}
					if updated.State != to {
						t.Errorf("post-write state = %q, want %q", updated.State, to)
					}
					return
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("Transition(%s, %s) = %v, want ErrInvalidTransition", from, to, err)
				}
				if kept, _ := store.FindByID(context.Background(), "INC-1"); kept.State != from {
					t.Errorf("rejected transition mutated state to %q", kept.State)
				}
			})
		}
	}
}

func TestTransitionUnknownIncident(t *testing.T) {
	lifecycle, _, _ := newTestLifecycle(nil)
	if _, err := lifecycle.Transition(context.Background(), "INC-nope", models.IncidentInProgress); err == nil {
		t.Error("transition on a missing incident must fail")
	}
}

func TestPendingCountsInProgress(t *testing.T) {
	lifecycle, store, _ := newTestLifecycle(nil)
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-1", DriverID: "d-1", TruckID: "t-1", State: models.IncidentPending})
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-2", DriverID: "d-1", TruckID: "t-1", State: models.IncidentInProgress})
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-3", DriverID: "d-1", TruckID: "t-1", State: models.IncidentResolved})
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-4", DriverID: "d-2", TruckID: "t-2", State: models.IncidentPending})

	byDriver, err := lifecycle.PendingForDriver(context.Background(), "d-1")
	if err != nil {
		t.Fatalf("PendingForDriver = %v", err)
	}
	if len(byDriver) != 2 {
		t.Errorf("PendingForDriver(d-1) = %d incidents, want 2 (pendiente + en_proceso)", len(byDriver))
	}

	byTruck, err := lifecycle.PendingForTruck(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("PendingForTruck = %v", err)
	}
	if len(byTruck) != 2 {
		t.Errorf("PendingForTruck(t-1) = %d incidents, want 2", len(byTruck))
	}
}

func TestListRouteOrderUnresolvableLast(t *testing.T) {
	routes := map[string]string{"t-10": "Ruta 10", "t-2": "Ruta 2"}
	lifecycle, store, _ := newTestLifecycle(routes)
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-1", TruckID: "t-10", State: models.IncidentPending})
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-2", TruckID: "t-gone", State: models.IncidentPending})
	store.Insert(context.Background(), models.Incident{IncidentID: "INC-3", TruckID: "t-2", State: models.IncidentPending})

	listed, err := lifecycle.List(context.Background())
	if err != nil {
		t.Fatalf("List = %v", err)
	}

	want := []string{"INC-3", "INC-1", "INC-2"}
	for i, inc := range listed {
		if inc.IncidentID != want[i] {
			t.Errorf("listed[%d] = %s, want %s", i, inc.IncidentID, want[i])
		}
	}
}
