package dispatch

import (
	"testing"

	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
)

// E5: a booking whose pickup falls inside the lock window must keep
// its vehicle assignment across a re-plan.
func TestSimulator_LockPreservation(t *testing.T) {
	rules := testRules()
	hexIdx := testHexIndex(rules)
	rates := ratetable.Default()

	home := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 12.98, Lng: 77.60}

	vehicles := []Vehicle{{ID: 1, Class: 1, Home: home}}
	scheduled := []Booking{
		{ID: 1, Class: 1, Pickup: home, Drop: drop, PickupTime: 390, DistanceKM: 2.0, TravelTime: 10},
	}

	sim := NewSimulator(vehicles, scheduled, hexIdx, rules, rates, nil, nil)
	sim.Tick() // advances to 390; booking 1 (pickup 390) falls inside the lock window

	lockedVehicle, wasLocked := vehicleOfBooking(sim, 1)
	if !wasLocked {
		t.Fatal("booking 1 expected to be assigned after first tick")
	}

	sim.Tick()

	stillVehicle, stillAssigned := vehicleOfBooking(sim, 1)
	if !stillAssigned {
		t.Fatal("locked booking 1 disappeared after a second tick")
	}
	if stillVehicle != lockedVehicle {
		t.Errorf("locked booking 1 moved from vehicle %d to %d", lockedVehicle, stillVehicle)
	}
}

// E8: once admitted, an instant booking is never locked and stays in
// the active (assigned-or-unassigned-but-known) set.
func TestSimulator_InstantBookingNeverLocked(t *testing.T) {
	rules := testRules()
	hexIdx := testHexIndex(rules)
	rates := ratetable.Default()

	home := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 12.98, Lng: 77.60}

	vehicles := []Vehicle{{ID: 1, Class: 1, Home: home}}
	sim := NewSimulator(vehicles, nil, hexIdx, rules, rates, nil, nil)

	instant := Booking{ID: 99, Class: 1, Pickup: home, Drop: drop, PickupTime: 370, DistanceKM: 2.0, TravelTime: 10}
	sim.AdmitInstantBooking(instant)

	sim.Tick()
	sim.updateLockedAssignments()

	if sim.locked[instant.ID] {
		t.Errorf("instant booking %d was locked, want never locked", instant.ID)
	}
	if _, ok := sim.bookingByID[instant.ID]; !ok {
		t.Errorf("instant booking %d no longer tracked after admission", instant.ID)
	}
}

func vehicleOfBooking(sim *Simulator, bookingID int) (int, bool) {
	for _, v := range sim.Vehicles {
		for _, id := range v.Assigned {
			if id == bookingID {
				return v.ID, true
			}
		}
	}
	return 0, false
}
