package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleet-coordinator-api-server/internal/models"
)

func TestTrackerReportNow(t *testing.T) {
	trucks := &fakeTruckPositions{truck: models.Truck{TruckID: "TRK-1"}}
	tracker := NewTracker(trucks, time.Hour, nil)
	defer tracker.Stop("d-1")

	truck, err := tracker.ReportNow(context.Background(), "d-1", models.Position{Latitude: 4.6, Longitude: -74.1})
	if err != nil {
		t.Fatalf("ReportNow = %v", err)
	}
	if truck.LastPosition == nil || truck.LastPosition.Longitude != -74.1 {
		t.Errorf("reported position = %+v", truck.LastPosition)
	}
}

func TestTrackerWakeBeforeFirstSample(t *testing.T) {
	trucks := &fakeTruckPositions{truck: models.Truck{TruckID: "TRK-1"}}
	tracker := NewTracker(trucks, time.Hour, nil)
	defer tracker.Stop("d-1")

	// No device sample yet: the wake-triggered report must fail on the
	// source and write nothing, silently.
	tracker.Wake("d-1")
	time.Sleep(50 * time.Millisecond)

	if got := trucks.updateCount(); got != 0 {
		t.Errorf("updates = %d, want 0 before the first sample", got)
	}

	tracker.Observe("d-1", models.Position{Latitude: 1, Longitude: 2})
	tracker.Wake("d-1")

	deadline := time.After(2 * time.Second)
	for trucks.updateCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("wake after a sample never produced a report")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func TestTrackerStopEndsSession(t *testing.T) {
	trucks := &fakeTruckPositions{truck: models.Truck{TruckID: "TRK-1"}}
	tracker := NewTracker(trucks, 10*time.Millisecond, nil)

	tracker.Observe("d-1", models.Position{Latitude: 1, Longitude: 2})

	deadline := time.After(2 * time.Second)
	for trucks.updateCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("periodic reporter never wrote")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	tracker.Stop("d-1")
	time.Sleep(30 * time.Millisecond)
	after := trucks.updateCount()
	time.Sleep(50 * time.Millisecond)

	if got := trucks.updateCount(); got != after {
		t.Errorf("reporter kept writing after Stop: %d then %d", after, got)
	}

	// A later sample starts a fresh session rather than resurrecting the
	// old goroutine.
	tracker.ReportNow(context.Background(), "d-1", models.Position{Latitude: 3, Longitude: 4})
	if got := trucks.updateCount(); got <= after {
		t.Errorf("new session after Stop did not report: %d", got)
	}
	tracker.Stop("d-1")
}

func TestTrackerManualErrorsSurface(t *testing.T) {
	trucks := &fakeTruckPositions{findErr: errors.New("no truck")}
	tracker := NewTracker(trucks, time.Hour, nil)
	defer tracker.Stop("d-1")

	if _, err := tracker.ReportNow(context.Background(), "d-1", models.Position{}); !errors.Is(err, ErrNoAssignment) {
		t.Errorf("ReportNow = %v, want ErrNoAssignment", err)
	}
}
