package dispatch

import (
	"testing"

	"github.com/fleetops/ride-dispatch/internal/geo"
)

func TestDeadKM(t *testing.T) {
	home := geo.Point{Lat: 12.97, Lng: 77.59}
	pickup := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 12.98, Lng: 77.60}

	route := []geo.Point{pickup, drop}

	dead := DeadKM(route, home, 1.3)
	if dead != 0 {
		t.Errorf("DeadKM() = %v, want 0 (pickup at home)", dead)
	}
}

func TestDeadKM_EmptyRoute(t *testing.T) {
	home := geo.Point{Lat: 12.97, Lng: 77.59}
	if got := DeadKM(nil, home, 1.3); got != 0 {
		t.Errorf("DeadKM(nil) = %v, want 0", got)
	}
}

func TestActiveKM_FallsBackToHaversine(t *testing.T) {
	pickup := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 12.98, Lng: 77.60}
	route := []geo.Point{pickup, drop}

	got := ActiveKM(route, map[[2]geo.Point]float64{}, 1.3)
	want := geo.Distance(pickup, drop, 1.3)
	if got != want {
		t.Errorf("ActiveKM() = %v, want %v", got, want)
	}
}

func TestActiveKM_UsesBookingDistance(t *testing.T) {
	pickup := geo.Point{Lat: 12.97, Lng: 77.59}
	drop := geo.Point{Lat: 12.98, Lng: 77.60}
	route := []geo.Point{pickup, drop}

	idx := map[[2]geo.Point]float64{{pickup, drop}: 2.0}
	if got := ActiveKM(route, idx, 1.3); got != 2.0 {
		t.Errorf("ActiveKM() = %v, want 2.0", got)
	}
}
