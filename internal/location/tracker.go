// server/internal/location/tracker.go
package location

import (
	"context"
	"sync"
	"time"

	"fleet-coordinator-api-server/internal/models"
)

// sampleSource keeps the latest position pushed by a driver's device and
// serves it as the session's positioning source. Before the first sample
// arrives the source is unavailable and reports no-op silently.
type sampleSource struct {
	mu  sync.Mutex
	pos models.Position
	has bool
}

func (s *sampleSource) set(pos models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = pos
	s.has = true
}

func (s *sampleSource) CurrentPosition(ctx context.Context) (models.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.has {
		return models.Position{}, ErrPositionUnavailable
	}
	return s.pos, nil
}

type driverSession struct {
	reporter *Reporter
	sample   *sampleSource
	cancel   context.CancelFunc
}

// Tracker keeps one reporter per active driver session.
type Tracker struct {
	mu        sync.Mutex
	sessions  map[string]*driverSession
	trucks    TruckPositions
	interval  time.Duration
	broadcast func(models.Truck)
}

func NewTracker(trucks TruckPositions, interval time.Duration, broadcast func(models.Truck)) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		sessions:  make(map[string]*driverSession),
		trucks:    trucks,
		interval:  interval,
		broadcast: broadcast,
	}
}

func (t *Tracker) session(driverID string) *driverSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[driverID]; ok {
		return s
	}

	sample := &sampleSource{}
	reporter := NewReporter(driverID, sample, t.trucks, &Flight{}, t.interval, t.broadcast)
	ctx, cancel := context.WithCancel(context.Background())
	go reporter.Run(ctx)

	s := &driverSession{reporter: reporter, sample: sample, cancel: cancel}
	t.sessions[driverID] = s
	return s
}

// Observe records a fresh device sample and makes sure the periodic
// reporter for this driver is running. It does not itself write through;
// the reporter does, on its own coalesced triggers.
func (t *Tracker) Observe(driverID string, pos models.Position) {
	t.session(driverID).sample.set(pos)
}

// Wake forwards a background-to-foreground transition to the session
// reporter.
func (t *Tracker) Wake(driverID string) {
	t.session(driverID).reporter.Wake()
}

// ReportNow records the sample and triggers an immediate manual report
// whose outcome is surfaced to the user.
func (t *Tracker) ReportNow(ctx context.Context, driverID string, pos models.Position) (models.Truck, error) {
	s := t.session(driverID)
	s.sample.set(pos)
	return s.reporter.ReportNow(ctx)
}

// InFlight exposes the session's single-flight flag.
func (t *Tracker) InFlight(driverID string) bool {
	return t.session(driverID).reporter.Flight().InFlight()
}

// Stop tears down the session reporter, typically at logout.
func (t *Tracker) Stop(driverID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.sessions[driverID]; ok {
		s.cancel()
		delete(t.sessions, driverID)
	}
}
