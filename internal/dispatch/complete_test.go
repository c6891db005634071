package dispatch

import (
	"testing"

	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
)

// E6: an ending candidate within the 3km excellent radius must be
// chosen over a later-pickup but farther one. The farther candidate
// (~3.25km road distance, inside the 5km strict radius but outside the
// excellent radius) appears first in descending order, the ~1.95km
// candidate second; the ~1.95km one wins via early exit.
func TestFindEndingBooking_EarlyExitOnExcellentRadius(t *testing.T) {
	rules := testRules()
	home := geo.Point{Lat: 12.97, Lng: 77.59}

	v := &Vehicle{ID: 1, Class: 1, Home: home, Current: home, AvailableTime: 360}

	far := Booking{ID: 1, Class: 1, Pickup: home, PickupTime: 600, Drop: geo.Point{Lat: 12.97 + 0.0225, Lng: 77.59}}  // road distance ~3.25km from home
	near := Booking{ID: 2, Class: 1, Pickup: home, PickupTime: 540, Drop: geo.Point{Lat: 12.97 + 0.0135, Lng: 77.59}} // road distance ~1.95km from home

	descending := []Booking{far, near}
	assigned := map[int]bool{}

	ending := FindEndingBooking(v, descending, assigned, rules)
	if ending == nil {
		t.Fatal("FindEndingBooking() = nil, want a match")
	}
	if ending.ID != near.ID {
		t.Errorf("FindEndingBooking() chose booking %d, want %d (closer, early-exit radius)", ending.ID, near.ID)
	}
}

// E4: a route whose efficiency would fall below threshold must roll
// back to exactly its pre-call state and leave the vehicle unrouted.
func TestCompleteRoute_RollsBackOnLowEfficiency(t *testing.T) {
	rules := testRules()
	hexIdx := testHexIndex(rules)
	rates := ratetable.Default()

	home := geo.Point{Lat: 12.97, Lng: 77.59}
	fresh := Booking{ID: 1, Class: 1, Pickup: home, Drop: geo.Point{Lat: 12.97, Lng: 77.59}, PickupTime: 360, DistanceKM: 0.1, TravelTime: 5}

	v := &Vehicle{ID: 1, Class: 1, Home: home, Current: home, AvailableTime: 360}
	Assign(v, fresh, hexIdx, rules, rates, nil)

	before := v.ActiveKM
	beforeAssigned := len(v.Assigned)

	// The ending candidate's drop is close enough to home to pass the
	// fallback radius, but its pickup is far away, so the dead-km to
	// reach it swamps the route's active-km and the efficiency gate
	// must reject the whole route.
	nearHomeDrop := geo.Point{Lat: 12.97 + 0.05, Lng: 77.59}
	endingFarFromHome := Booking{ID: 2, Class: 1, Pickup: geo.Point{Lat: 13.5, Lng: 77.59}, Drop: nearHomeDrop, PickupTime: 600, DistanceKM: 0.5, TravelTime: 10}

	committed := CompleteRoute(v, []Booking{endingFarFromHome}, []Booking{endingFarFromHome}, []Booking{fresh, endingFarFromHome}, map[int]bool{fresh.ID: true}, hexIdx, rules, rates, nil, nil)

	if len(committed) != 0 {
		t.Fatalf("CompleteRoute() committed %v, want none (efficiency gate should reject)", committed)
	}
	if v.IsRouted {
		t.Errorf("expected vehicle to remain unrouted after rollback")
	}
	if v.ActiveKM != before {
		t.Errorf("ActiveKM = %v after rollback, want unchanged %v", v.ActiveKM, before)
	}
	if len(v.Assigned) != beforeAssigned {
		t.Errorf("Assigned length = %d after rollback, want unchanged %d", len(v.Assigned), beforeAssigned)
	}
}
