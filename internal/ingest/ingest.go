// Package ingest loads vehicles and bookings from the JSON files the
// batch planner and real-time simulator are fed.
package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fleetops/ride-dispatch/internal/dispatch"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/logger"
	"github.com/fleetops/ride-dispatch/internal/timeutil"
)

type rawVehicle struct {
	VehicleID   int     `json:"vehicle_id"`
	VehicleType string  `json:"vehicle_type"`
	HomeLat     float64 `json:"home_lat"`
	HomeLng     float64 `json:"home_lng"`
}

type rawBooking struct {
	BookingID   int     `json:"booking_id"`
	VehicleType string  `json:"vehicle_type"`
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	PickupLon   float64 `json:"pickup_lon"`
	DropLat     float64 `json:"drop_lat"`
	DropLng     float64 `json:"drop_lng"`
	DropLon     float64 `json:"drop_lon"`
	PickupTime  string  `json:"pickup_time"`
	DistanceKM  float64 `json:"distance_km"`
	TravelTime  float64 `json:"travel_time"`
}

// classFromType parses a "classN" string into N, falling back to
// class 1 when the string is missing or malformed.
func classFromType(vehicleType string) dispatch.VehicleClass {
	n := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(vehicleType)), "class")
	v, err := strconv.Atoi(n)
	if err != nil || v < int(dispatch.MinVehicleClass) || v > int(dispatch.MaxVehicleClass) {
		return dispatch.MinVehicleClass
	}
	return dispatch.VehicleClass(v)
}

// LoadVehicles reads a vehicles.json file into dispatch.Vehicle seeds
// (Home set, everything else zero - NewPlanner/NewSimulator finish
// initializing them).
func LoadVehicles(path string) ([]dispatch.Vehicle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeVehicles(f)
}

func decodeVehicles(r io.Reader) ([]dispatch.Vehicle, error) {
	var raw []rawVehicle
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}

	vehicles := make([]dispatch.Vehicle, 0, len(raw))
	for _, rv := range raw {
		home := geo.Point{Lat: rv.HomeLat, Lng: rv.HomeLng}
		vehicles = append(vehicles, dispatch.Vehicle{
			ID:    rv.VehicleID,
			Class: classFromType(rv.VehicleType),
			Home:  home,
		})
	}
	return vehicles, nil
}

// LoadBookings reads a bookings.json or instant_bookings.json file
// into dispatch.Booking values. pickup_lon/drop_lon take precedence
// over pickup_lng/drop_lng when both are present, per the canonical
// key the source data actually uses.
func LoadBookings(path string, log *logger.Logger) ([]dispatch.Booking, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return decodeBookings(f, log)
}

func decodeBookings(r io.Reader, log *logger.Logger) ([]dispatch.Booking, error) {
	var raw []rawBooking
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	bookings := make([]dispatch.Booking, 0, len(raw))
	for _, rb := range raw {
		pickupLng := rb.PickupLon
		if pickupLng == 0 {
			pickupLng = rb.PickupLng
		}
		dropLng := rb.DropLon
		if dropLng == 0 {
			dropLng = rb.DropLng
		}

		bookings = append(bookings, dispatch.Booking{
			ID:         rb.BookingID,
			Pickup:     geo.Point{Lat: rb.PickupLat, Lng: pickupLng},
			Drop:       geo.Point{Lat: rb.DropLat, Lng: dropLng},
			PickupTime: timeutil.PickupTimeMinutes(log, rb.PickupTime),
			Class:      classFromType(rb.VehicleType),
			DistanceKM: rb.DistanceKM,
			TravelTime: rb.TravelTime,
		})
	}
	return bookings, nil
}
