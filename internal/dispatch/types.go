// Package dispatch implements the home-oriented vehicle routing
// heuristic: assigning time-stamped bookings to a fleet of
// home-based vehicles while minimizing dead kilometres and steering
// each vehicle back toward home at the end of its route.
package dispatch

import "github.com/fleetops/ride-dispatch/internal/geo"

// VehicleClass is a fleet tier, 1 (smallest) through 9 (largest). A
// vehicle of class N can serve bookings of class N or N-1; a booking
// of class N may, failing that, retry against class N+1 vehicles.
type VehicleClass int

const (
	MinVehicleClass VehicleClass = 1
	MaxVehicleClass VehicleClass = 9
)

// Booking is an immutable ride request once admitted to the system.
type Booking struct {
	ID          int
	Pickup      geo.Point
	Drop        geo.Point
	PickupTime  float64 // minutes from midnight
	Class       VehicleClass
	DistanceKM  float64 // active distance, supplied by the source data
	TravelTime  float64 // minutes, supplied by the source data (defaults to 30 if absent)
	IsInstant   bool    // admitted mid-simulation rather than known at start of day
}

// Vehicle is the mutable state of a single fleet unit as it
// accumulates a route over the course of a planning run.
type Vehicle struct {
	ID             int
	Class          VehicleClass
	Home           geo.Point
	Current        geo.Point
	AvailableTime  float64 // minutes from midnight; the vehicle cannot start a new leg before this
	Route          []geo.Point // alternating pickup/drop waypoints
	Assigned       []int       // booking IDs, in assignment order
	ActiveKM       float64
	DeadKM         float64
	TotalDriverPay float64
	HexCell        string
	IsRouted       bool // true once the vehicle's route is closed: a home-oriented route was accepted, or the final home leg was added at finalization
	Locked         []int // booking IDs the real-time simulator has locked in place (never re-planned)
}

// snapshot captures everything CompleteRoute needs to roll back on
// efficiency-gate rejection.
type snapshot struct {
	route          []geo.Point
	assigned       []int
	activeKM       float64
	deadKM         float64
	current        geo.Point
	availableTime  float64
	totalDriverPay float64
	hexCell        string
}

func (v *Vehicle) snapshot() snapshot {
	return snapshot{
		route:          append([]geo.Point(nil), v.Route...),
		assigned:       append([]int(nil), v.Assigned...),
		activeKM:       v.ActiveKM,
		deadKM:         v.DeadKM,
		current:        v.Current,
		availableTime:  v.AvailableTime,
		totalDriverPay: v.TotalDriverPay,
		hexCell:        v.HexCell,
	}
}

func (v *Vehicle) restore(s snapshot) {
	v.Route = s.route
	v.Assigned = s.assigned
	v.ActiveKM = s.activeKM
	v.DeadKM = s.deadKM
	v.Current = s.current
	v.AvailableTime = s.availableTime
	v.TotalDriverPay = s.totalDriverPay
	v.HexCell = s.hexCell
}
