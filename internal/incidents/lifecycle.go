// server/internal/incidents/lifecycle.go
package incidents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"fleet-coordinator-api-server/internal/listview"
	"fleet-coordinator-api-server/internal/models"

	"github.com/google/uuid"
)

var (
	ErrEmptyDescription  = errors.New("incident description is empty")
	ErrInvalidTransition = errors.New("invalid incident state transition")
)

// transitions is the full edge set of the state machine. There is no edge
// from pendiente directly to resuelta, and resuelta is not terminal: it
// can be reopened back to pendiente.
var transitions = map[string][]string{
	models.IncidentPending:    {models.IncidentInProgress},
	models.IncidentInProgress: {models.IncidentResolved, models.IncidentPending},
	models.IncidentResolved:   {models.IncidentPending},
}

// IncidentStore is the persistence collaborator.
type IncidentStore interface {
	Insert(ctx context.Context, incident models.Incident) (models.Incident, error)
	FindByID(ctx context.Context, incidentID string) (models.Incident, error)
	FindAll(ctx context.Context) ([]models.Incident, error)
	FindOpenByDriver(ctx context.Context, driverID string) ([]models.Incident, error)
	FindOpenByTruck(ctx context.Context, truckID string) ([]models.Incident, error)
	UpdateState(ctx context.Context, incidentID, state string) (models.Incident, error)
}

// TruckResolver maps a truck reference to its truck, used only for the
// route-ordered incident listing.
type TruckResolver interface {
	FindByID(ctx context.Context, truckID string) (models.Truck, error)
}

// MediaStore stores an incident image and returns an opaque reference.
type MediaStore interface {
	Upload(ctx context.Context, payload []byte, fileName, fileType string) (models.MediaPointer, error)
}

// Lifecycle owns the incident state machine.
type Lifecycle struct {
	incidents IncidentStore
	trucks    TruckResolver
	media     MediaStore
}

func NewLifecycle(incidents IncidentStore, trucks TruckResolver, media MediaStore) *Lifecycle {
	return &Lifecycle{incidents: incidents, trucks: trucks, media: media}
}

// Report files a new incident for the driver's active truck. Incidents are
// always created pendiente. The image, if any, is handed to the media
// collaborator at creation time and only its reference is recorded; the
// reporting driver never mutates the incident afterwards.
func (l *Lifecycle) Report(ctx context.Context, driverID, truckID, description string, image []byte, imageType string) (models.Incident, error) {
	if strings.TrimSpace(description) == "" {
		return models.Incident{}, ErrEmptyDescription
	}

	incident := models.Incident{
		IncidentID:  fmt.Sprintf("INC-%s", uuid.New().String()[:8]),
		Description: description,
		DriverID:    driverID,
		TruckID:     truckID,
		State:       models.IncidentPending,
		ReportedAt:  time.Now(),
		UpdatedAt:   time.Now(),
	}

	if len(image) > 0 && l.media != nil {
		pointer, err := l.media.Upload(ctx, image, incident.IncidentID, imageType)
		if err != nil {
			return models.Incident{}, err
		}
		incident.Image = &pointer
	}

	return l.incidents.Insert(ctx, incident)
}

// Transition moves the incident to target if the state machine has that
// edge, and returns the post-write incident. Anything else fails with
// ErrInvalidTransition before any state is mutated.
func (l *Lifecycle) Transition(ctx context.Context, incidentID, target string) (models.Incident, error) {
	incident, err := l.incidents.FindByID(ctx, incidentID)
	if err != nil {
		return models.Incident{}, err
	}

	allowed := false
	for _, next := range transitions[incident.State] {
		if next == target {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.Incident{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, incident.State, target)
	}

	return l.incidents.UpdateState(ctx, incidentID, target)
}

// PendingForDriver returns the driver's not-yet-resolved incidents. This
// is deliberately broader than the literal pendiente state: backlog badges
// count pendiente and en_proceso, while the state machine itself only ever
// reasons about the literal state.
func (l *Lifecycle) PendingForDriver(ctx context.Context, driverID string) ([]models.Incident, error) {
	return l.incidents.FindOpenByDriver(ctx, driverID)
}

// PendingForTruck is the truck-keyed backlog view.
func (l *Lifecycle) PendingForTruck(ctx context.Context, truckID string) ([]models.Incident, error) {
	return l.incidents.FindOpenByTruck(ctx, truckID)
}

// List returns all incidents ordered by the route number of their truck,
// ascending; incidents whose truck reference no longer resolves sort last.
func (l *Lifecycle) List(ctx context.Context) ([]models.Incident, error) {
	incidents, err := l.incidents.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	routes := make(map[string]string, len(incidents))
	resolved := make(map[string]bool, len(incidents))
	for _, inc := range incidents {
		if _, seen := resolved[inc.TruckID]; seen {
			continue
		}
		truck, err := l.trucks.FindByID(ctx, inc.TruckID)
		resolved[inc.TruckID] = err == nil
		if err == nil {
			routes[inc.TruckID] = truck.Route
		}
	}

	sort.SliceStable(incidents, func(i, j int) bool {
		okI := resolved[incidents[i].TruckID]
		okJ := resolved[incidents[j].TruckID]
		if okI != okJ {
			return okI
		}
		if !okI {
			return false
		}
		return listview.ByRouteIndex(routes[incidents[i].TruckID], routes[incidents[j].TruckID])
	})
	return incidents, nil
}
