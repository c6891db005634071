package dispatch

import (
	"context"
	"sort"

	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/events"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/logger"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
)

// Planner runs the start-of-day batch assignment: every known booking
// is matched to a vehicle, each match is followed by an attempt to
// complete that vehicle's whole route, and any booking left unmatched
// at the same class is retried once against the next class up.
type Planner struct {
	Vehicles []*Vehicle
	HexIdx   *geo.HexIndex
	Rules    *config.BusinessRules
	Rates    *ratetable.Table
	Events   *events.Publisher
	Log      *logger.Logger

	// MaxRing overrides the expanding-ring search radius. Zero means
	// "use the batch radius" (set by NewPlanner); the real-time
	// simulator uses the wider single-booking radius instead.
	MaxRing int
}

// NewPlanner builds a planner over a fresh vehicle fleet, indexing
// every vehicle's starting hex cell.
func NewPlanner(vehicleSeeds []Vehicle, hexIdx *geo.HexIndex, rules *config.BusinessRules, rates *ratetable.Table, pub *events.Publisher, log *logger.Logger) *Planner {
	vehicles := make([]*Vehicle, len(vehicleSeeds))
	for i := range vehicleSeeds {
		v := vehicleSeeds[i]
		v.Current = v.Home
		v.AvailableTime = float64(rules.Schedule.StartOfDayMins)
		v.HexCell = hexIdx.CellOf(v.Home)
		vehicles[i] = &v
	}
	return &Planner{Vehicles: vehicles, HexIdx: hexIdx, Rules: rules, Rates: rates, Events: pub, Log: log, MaxRing: rules.Search.MaxRingBatch}
}

// Result summarizes a batch planning run.
type Result struct {
	AssignedCount   int
	UnassignedCount int
	Unassigned      []Booking
}

// Run executes the batch planner over bookings, returning how many
// were assigned.
func (p *Planner) Run(bookings []Booking) Result {
	ascending := append([]Booking(nil), bookings...)
	sort.Slice(ascending, func(i, j int) bool { return ascending[i].PickupTime < ascending[j].PickupTime })

	descending := make([]Booking, len(ascending))
	for i, b := range ascending {
		descending[len(ascending)-1-i] = b
	}

	assigned := make(map[int]bool, len(bookings))
	assignedCount := 0

	for _, booking := range ascending {
		if assigned[booking.ID] {
			continue
		}

		if p.tryAssign(booking, booking.Class, ascending, descending, assigned, &assignedCount) {
			continue
		}

		if booking.Class < MaxVehicleClass {
			higher := booking
			higher.Class = booking.Class + 1
			if p.tryAssign(booking, higher.Class, ascending, descending, assigned, &assignedCount) {
				continue
			}
		}

		if p.Log != nil {
			p.Log.Warnw("could not assign booking", "booking_id", booking.ID, "class", booking.Class)
		}
	}

	p.finalizeUnroutedVehicles()

	var unassigned []Booking
	for _, b := range bookings {
		if !assigned[b.ID] {
			unassigned = append(unassigned, b)
		}
	}

	if p.Log != nil {
		p.Log.Infow("batch assignment complete", "assigned", assignedCount, "total", len(bookings))
	}

	return Result{AssignedCount: assignedCount, UnassignedCount: len(unassigned), Unassigned: unassigned}
}

// tryAssign attempts to assign booking at searchClass to the best
// available vehicle (minimizing route-wide dead-km minus active-km),
// then completes that vehicle's route. Returns true if the booking
// was committed.
func (p *Planner) tryAssign(booking Booking, searchClass VehicleClass, allBookings, descending []Booking, assigned map[int]bool, assignedCount *int) bool {
	probe := booking
	probe.Class = searchClass

	maxRing := p.MaxRing
	if maxRing == 0 {
		maxRing = p.Rules.Search.MaxRingBatch
	}
	candidates := FindCandidates(p.Vehicles, probe, p.HexIdx, maxRing, p.Rules, p.Log)
	if len(candidates) == 0 {
		return false
	}

	endpointIdx := endpointIndex(allBookings)

	var best *Vehicle
	bestDiff := 1e18
	for _, v := range candidates {
		testRoute := append(append([]geo.Point(nil), v.Route...), booking.Pickup, booking.Drop)
		testDead := DeadKMClosed(testRoute, v.Home, p.Rules.Geo.RoadDistanceFactor)
		testActive := ActiveKM(testRoute, endpointIdx, p.Rules.Geo.RoadDistanceFactor)
		diff := testDead - testActive
		if diff < bestDiff {
			bestDiff = diff
			best = v
		}
	}
	if best == nil {
		return false
	}

	Assign(best, booking, p.HexIdx, p.Rules, p.Rates, p.Log)
	assigned[booking.ID] = true
	*assignedCount++
	p.Events.Publish(context.Background(), events.Topics.BookingAssigned, events.NewEvent(events.Topics.BookingAssigned, map[string]interface{}{
		"booking_id": booking.ID, "vehicle_id": best.ID,
	}))

	available := make([]Booking, 0, len(allBookings))
	for _, b := range allBookings {
		if !assigned[b.ID] {
			available = append(available, b)
		}
	}

	committed := CompleteRoute(best, available, descending, allBookings, assigned, p.HexIdx, p.Rules, p.Rates, p.Events, p.Log)
	for _, id := range committed {
		assigned[id] = true
		*assignedCount++
	}

	// Whether or not CompleteRoute found an ending, Assign already
	// advanced best.AvailableTime past the fresh booking, and
	// CompleteRoute's snapshot/restore preserves that on rejection; the
	// vehicle stays available for the next fresh booking either way.

	return true
}

// finalizeUnroutedVehicles adds the final home leg to any vehicle
// that ended the run with a fresh booking but no completed route.
func (p *Planner) finalizeUnroutedVehicles() {
	for _, v := range p.Vehicles {
		if len(v.Assigned) == 0 || v.IsRouted {
			continue
		}
		finalLegKM := geo.Distance(v.Current, v.Home, p.Rules.Geo.RoadDistanceFactor)
		v.DeadKM += finalLegKM
		v.TotalDriverPay += finalLegKM * p.Rates.DeadPay(int(v.Class))
		v.IsRouted = true
		if p.Log != nil {
			p.Log.Infow("finalized vehicle with fresh booking only", "vehicle_id", v.ID)
		}
	}
}
