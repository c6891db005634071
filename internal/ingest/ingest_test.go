package ingest

import (
	"strings"
	"testing"
)

func TestDecodeVehicles(t *testing.T) {
	r := strings.NewReader(`[{"vehicle_id": 1, "vehicle_type": "class2", "home_lat": 12.97, "home_lng": 77.59}]`)
	vehicles, err := decodeVehicles(r)
	if err != nil {
		t.Fatalf("decodeVehicles() error = %v", err)
	}
	if len(vehicles) != 1 {
		t.Fatalf("decodeVehicles() returned %d vehicles, want 1", len(vehicles))
	}
	v := vehicles[0]
	if v.ID != 1 || v.Class != 2 || v.Home.Lat != 12.97 || v.Home.Lng != 77.59 {
		t.Errorf("decodeVehicles() = %+v, unexpected fields", v)
	}
}

func TestDecodeVehicles_UnknownClassFallsBackToClass1(t *testing.T) {
	r := strings.NewReader(`[{"vehicle_id": 1, "vehicle_type": "classX", "home_lat": 0, "home_lng": 0}]`)
	vehicles, err := decodeVehicles(r)
	if err != nil {
		t.Fatalf("decodeVehicles() error = %v", err)
	}
	if vehicles[0].Class != 1 {
		t.Errorf("Class = %v, want 1 (fallback)", vehicles[0].Class)
	}
}

// Canonical key is pickup_lon/drop_lon; pickup_lng/drop_lng must also
// be accepted.
func TestDecodeBookings_AcceptsBothLongitudeKeys(t *testing.T) {
	r := strings.NewReader(`[
		{"booking_id": 1, "vehicle_type": "class1", "pickup_lat": 12.97, "pickup_lon": 77.59, "drop_lat": 12.98, "drop_lon": 77.60, "pickup_time": "2026-01-01 07:00:00", "distance_km": 2.0, "travel_time": 10},
		{"booking_id": 2, "vehicle_type": "class1", "pickup_lat": 12.97, "pickup_lng": 77.50, "drop_lat": 12.98, "drop_lng": 77.51, "pickup_time": "2026-01-01 08:00:00", "distance_km": 1.0, "travel_time": 5}
	]`)

	bookings, err := decodeBookings(r, nil)
	if err != nil {
		t.Fatalf("decodeBookings() error = %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("decodeBookings() returned %d bookings, want 2", len(bookings))
	}
	if bookings[0].Pickup.Lng != 77.59 {
		t.Errorf("booking 1 pickup lng (pickup_lon) = %v, want 77.59", bookings[0].Pickup.Lng)
	}
	if bookings[1].Pickup.Lng != 77.50 {
		t.Errorf("booking 2 pickup lng (pickup_lng fallback) = %v, want 77.50", bookings[1].Pickup.Lng)
	}
	if bookings[0].PickupTime != 7*60 {
		t.Errorf("booking 1 PickupTime = %v, want %v", bookings[0].PickupTime, 7*60)
	}
}
