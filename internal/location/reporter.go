// server/internal/location/reporter.go
package location

import (
	"context"
	"errors"
	"sync"
	"time"

	"fleet-coordinator-api-server/internal/models"
)

// DefaultInterval is how often the periodic trigger fires.
const DefaultInterval = 120 * time.Second

// Best-effort outcomes. Run swallows these silently; only ReportNow (the
// manual trigger) surfaces them to the user.
var (
	ErrInFlight            = errors.New("a report is already in flight")
	ErrNoAssignment        = errors.New("no active truck assignment")
	ErrPositionUnavailable = errors.New("positioning source unavailable")
)

// PositionSource yields a single position sample on request. No streaming.
type PositionSource interface {
	CurrentPosition(ctx context.Context) (models.Position, error)
}

// TruckPositions resolves the driver's active assignment and records
// position samples against it.
type TruckPositions interface {
	FindByDriver(ctx context.Context, driverID string) (models.Truck, error)
	UpdatePosition(ctx context.Context, truckID string, pos models.Position, at time.Time) (models.Truck, error)
}

// Flight is the single-flight guard shared by every data-loading operation
// of a driver session. It is a plain externally visible boolean: set
// before a report begins, cleared on completion or failure, so a timer
// tick and a visibility event arriving together never both proceed.
type Flight struct {
	mu   sync.Mutex
	busy bool
}

func (f *Flight) TryBegin() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return false
	}
	f.busy = true
	return true
}

func (f *Flight) End() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
}

func (f *Flight) InFlight() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// Reporter pushes a driver's position at most once per interval while the
// driver holds an active assignment, plus once immediately when the
// session returns to the foreground. The two triggers are coalesced.
type Reporter struct {
	driverID  string
	source    PositionSource
	trucks    TruckPositions
	flight    *Flight
	interval  time.Duration
	wake      chan struct{}
	broadcast func(models.Truck)
}

// NewReporter wires a reporter for one driver session. flight may be
// shared with other loaders of the same session; broadcast may be nil.
func NewReporter(driverID string, source PositionSource, trucks TruckPositions, flight *Flight, interval time.Duration, broadcast func(models.Truck)) *Reporter {
	if flight == nil {
		flight = &Flight{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		driverID:  driverID,
		source:    source,
		trucks:    trucks,
		flight:    flight,
		interval:  interval,
		wake:      make(chan struct{}, 1),
		broadcast: broadcast,
	}
}

// Flight exposes the session's single-flight guard.
func (r *Reporter) Flight() *Flight {
	return r.flight
}

// Wake signals a background-to-foreground transition. Repeated wakes while
// one is pending collapse into a single report.
func (r *Reporter) Wake() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Run drives the periodic and foreground triggers until ctx is cancelled.
// Failures are silent here: this is a best-effort signal, not a guaranteed
// delivery channel, and no retry is attempted.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = r.report(ctx)
			r.drainWake()
		case <-r.wake:
			_, _ = r.report(ctx)
		}
	}
}

// drainWake drops a wake that arrived while a tick-driven report ran, so
// the same moment is never reported twice.
func (r *Reporter) drainWake() {
	select {
	case <-r.wake:
	default:
	}
}

// ReportNow is the explicit manual trigger; it is the only one whose
// outcome reaches the user.
func (r *Reporter) ReportNow(ctx context.Context) (models.Truck, error) {
	return r.report(ctx)
}

func (r *Reporter) report(ctx context.Context) (models.Truck, error) {
	if !r.flight.TryBegin() {
		return models.Truck{}, ErrInFlight
	}
	defer r.flight.End()

	truck, err := r.trucks.FindByDriver(ctx, r.driverID)
	if err != nil {
		return models.Truck{}, ErrNoAssignment
	}

	pos, err := r.source.CurrentPosition(ctx)
	if err != nil {
		return models.Truck{}, ErrPositionUnavailable
	}

	updated, err := r.trucks.UpdatePosition(ctx, truck.TruckID, pos, time.Now())
	if err != nil {
		return models.Truck{}, err
	}

	if r.broadcast != nil {
		r.broadcast(updated)
	}
	return updated, nil
}
