package dispatch

import (
	"testing"

	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
)

func testRules() *config.BusinessRules {
	return config.DefaultBusinessRules()
}

func testHexIndex(rules *config.BusinessRules) *geo.HexIndex {
	return geo.NewHexIndex(rules.Geo.H3Resolution)
}

// E1: one vehicle, one booking ending near home; expect assignment,
// active km equal to the booking's distance, and a finalized home leg.
func TestPlanner_SingleBookingAssignsAndReturnsHome(t *testing.T) {
	rules := testRules()
	hexIdx := testHexIndex(rules)
	rates := ratetable.Default()

	home := geo.Point{Lat: 12.97, Lng: 77.59}
	pickup := home
	drop := geo.Point{Lat: 12.98, Lng: 77.60}

	vehicles := []Vehicle{{ID: 1, Class: 1, Home: home}}
	bookings := []Booking{{ID: 1, Pickup: pickup, Drop: drop, PickupTime: 420, Class: 1, DistanceKM: 2.0, TravelTime: 10}}

	p := NewPlanner(vehicles, hexIdx, rules, rates, nil, nil)
	result := p.Run(bookings)

	if result.AssignedCount != 1 {
		t.Fatalf("AssignedCount = %d, want 1", result.AssignedCount)
	}

	v := p.Vehicles[0]
	if v.ActiveKM != 2.0 {
		t.Errorf("ActiveKM = %v, want 2.0", v.ActiveKM)
	}
	if !v.IsRouted {
		t.Errorf("expected vehicle to be routed")
	}
}

// E2: two identical vehicles, two bookings to the same drop at
// different pickup times; both must be assigned, one per vehicle.
func TestPlanner_TwoVehiclesNoDoubleBooking(t *testing.T) {
	rules := testRules()
	hexIdx := testHexIndex(rules)
	rates := ratetable.Default()

	home := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 13.00, Lng: 77.60}

	vehicles := []Vehicle{
		{ID: 1, Class: 1, Home: home},
		{ID: 2, Class: 1, Home: home},
	}
	bookings := []Booking{
		{ID: 1, Pickup: home, Drop: drop, PickupTime: 420, Class: 1, DistanceKM: 4.0, TravelTime: 15},
		{ID: 2, Pickup: home, Drop: drop, PickupTime: 480, Class: 1, DistanceKM: 4.0, TravelTime: 15},
	}

	p := NewPlanner(vehicles, hexIdx, rules, rates, nil, nil)
	result := p.Run(bookings)

	if result.AssignedCount != 2 {
		t.Fatalf("AssignedCount = %d, want 2", result.AssignedCount)
	}

	seen := make(map[int]bool)
	for _, v := range p.Vehicles {
		for _, id := range v.Assigned {
			if seen[id] {
				t.Errorf("booking %d assigned to more than one vehicle", id)
			}
			seen[id] = true
		}
	}
}

// E3: no class1 vehicle is feasible; a class2 vehicle is. The booking
// must be upgraded and assigned.
func TestPlanner_UpgradesToNextClassWhenNoneFeasible(t *testing.T) {
	rules := testRules()
	hexIdx := testHexIndex(rules)
	rates := ratetable.Default()

	home := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 12.98, Lng: 77.60}

	vehicles := []Vehicle{{ID: 1, Class: 2, Home: home}}
	bookings := []Booking{{ID: 1, Pickup: home, Drop: drop, PickupTime: 420, Class: 1, DistanceKM: 2.0, TravelTime: 10}}

	p := NewPlanner(vehicles, hexIdx, rules, rates, nil, nil)
	result := p.Run(bookings)

	if result.AssignedCount != 1 {
		t.Fatalf("AssignedCount = %d, want 1 (expected upgrade to class2)", result.AssignedCount)
	}
	if len(p.Vehicles[0].Assigned) != 1 {
		t.Errorf("expected booking assigned to the class2 vehicle")
	}
}

func TestCompatibleClass(t *testing.T) {
	tests := []struct {
		vc, bc VehicleClass
		want   bool
	}{
		{1, 1, true},
		{2, 1, true},
		{1, 2, false},
		{3, 1, false},
	}
	for _, tt := range tests {
		if got := compatibleClass(tt.vc, tt.bc); got != tt.want {
			t.Errorf("compatibleClass(%v, %v) = %v, want %v", tt.vc, tt.bc, got, tt.want)
		}
	}
}
