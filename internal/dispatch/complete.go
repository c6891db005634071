package dispatch

import (
	"context"
	"math"
	"sort"

	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/events"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/logger"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
	"github.com/fleetops/ride-dispatch/internal/timeutil"
)

// FindEndingBooking searches descending (latest-pickup-first) for a
// booking that brings v close to home, in two phases: first within
// EndingStrictRadiusKM (exiting early on anything within
// EndingExcellentRadiusKM), then, failing that, within
// EndingFallbackRadiusKM. Every candidate must still be class
// compatible, time feasible, and leave at least EndingMinGapMins of
// slack for middle bookings.
func FindEndingBooking(v *Vehicle, descending []Booking, assigned map[int]bool, rules *config.BusinessRules) *Booking {
	eligible := func(b Booking) bool {
		if assigned[b.ID] {
			return false
		}
		if !Feasible(v, b, rules) {
			return false
		}
		if !compatibleClass(v.Class, b.Class) {
			return false
		}
		gap := b.PickupTime - v.AvailableTime
		return gap >= rules.Route.EndingMinGapMins
	}

	var best *Booking
	bestDist := math.Inf(1)

	for i := range descending {
		b := descending[i]
		if !eligible(b) {
			continue
		}
		dist := geo.Distance(b.Drop, v.Home, rules.Geo.RoadDistanceFactor)
		if dist > rules.Route.EndingStrictRadiusKM {
			continue
		}
		if dist <= rules.Route.EndingExcellentRadiusKM {
			chosen := b
			return &chosen
		}
		if dist < bestDist {
			bestDist = dist
			chosen := b
			best = &chosen
		}
	}
	if best != nil {
		return best
	}

	bestDist = math.Inf(1)
	for i := range descending {
		b := descending[i]
		if !eligible(b) {
			continue
		}
		dist := geo.Distance(b.Drop, v.Home, rules.Geo.RoadDistanceFactor)
		if dist > rules.Route.EndingFallbackRadiusKM {
			continue
		}
		if dist < bestDist {
			bestDist = dist
			chosen := b
			best = &chosen
		}
	}
	return best
}

// FindMiddleBookings greedily selects, in time order, bookings that
// fit between v's current state and the ending booking's pickup,
// each chosen to minimize route-wide dead-km minus active-km,
// rejecting any candidate whose test route would leave dead-km above
// active-km. Stops after MaxMiddleBookings or when no candidate
// fits.
func FindMiddleBookings(v *Vehicle, ending Booking, available []Booking, assigned map[int]bool, allBookings []Booking, rules *config.BusinessRules) []Booking {
	var middle []Booking

	candidates := make([]Booking, 0, len(available))
	for _, b := range available {
		if assigned[b.ID] || b.ID == ending.ID {
			continue
		}
		if b.PickupTime >= v.AvailableTime && b.PickupTime < ending.PickupTime && compatibleClass(v.Class, b.Class) {
			candidates = append(candidates, b)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].PickupTime < candidates[j].PickupTime })

	tempCurrent := v.Current
	tempAvailable := v.AvailableTime
	tempRoute := append([]geo.Point(nil), v.Route...)
	tempAssigned := make(map[int]bool, len(assigned)+1)
	for id := range assigned {
		tempAssigned[id] = true
	}
	tempAssigned[ending.ID] = true
	for _, id := range v.Assigned {
		tempAssigned[id] = true
	}

	endpoints := endpointIndex(allBookings)

	for len(middle) < rules.Route.MaxMiddleBookings && len(candidates) > 0 {
		bestIdx := -1
		var bestDiff float64 = math.Inf(1)

		for i, b := range candidates {
			if b.PickupTime < tempAvailable {
				continue
			}
			travelKM := geo.Distance(tempCurrent, b.Pickup, rules.Geo.RoadDistanceFactor)
			travelTime := timeutil.TravelTimeMinutes(travelKM, rules.Geo.AverageSpeedKMH)
			earliestArrival := tempAvailable + travelTime
			if earliestArrival > b.PickupTime+60.0 {
				continue
			}

			activeTime := b.TravelTime
			if activeTime == 0 {
				activeTime = 30
			}
			actualPickupStart := earliestArrival
			if b.PickupTime > actualPickupStart {
				actualPickupStart = b.PickupTime
			}
			bookingEnd := actualPickupStart + activeTime + rules.Route.ServiceBufferMins

			distToEnding := geo.Distance(b.Drop, ending.Pickup, rules.Geo.RoadDistanceFactor)
			timeToEnding := timeutil.TravelTimeMinutes(distToEnding, rules.Geo.AverageSpeedKMH)
			if bookingEnd+timeToEnding > ending.PickupTime+60.0 {
				continue
			}

			testRoute := append(append([]geo.Point(nil), tempRoute...), b.Pickup, b.Drop, ending.Pickup, ending.Drop)
			testDead := DeadKMClosed(testRoute, v.Home, rules.Geo.RoadDistanceFactor)

			testActive := ActiveKM(testRoute, endpoints, rules.Geo.RoadDistanceFactor)

			if testDead <= testActive {
				diff := testDead - testActive
				if diff < bestDiff {
					bestDiff = diff
					bestIdx = i
				}
			}
		}

		if bestIdx < 0 {
			break
		}

		chosen := candidates[bestIdx]
		middle = append(middle, chosen)
		tempAssigned[chosen.ID] = true

		travelKM := geo.Distance(tempCurrent, chosen.Pickup, rules.Geo.RoadDistanceFactor)
		travelTime := timeutil.TravelTimeMinutes(travelKM, rules.Geo.AverageSpeedKMH)
		activeTime := chosen.TravelTime
		if activeTime == 0 {
			activeTime = 30
		}
		earliestArrival := tempAvailable + travelTime
		actualPickupStart := earliestArrival
		if chosen.PickupTime > actualPickupStart {
			actualPickupStart = chosen.PickupTime
		}
		tempAvailable = actualPickupStart + activeTime + rules.Route.ServiceBufferMins
		tempCurrent = chosen.Drop
		tempRoute = append(tempRoute, chosen.Pickup, chosen.Drop)

		candidates = append(candidates[:bestIdx], candidates[bestIdx+1:]...)
	}

	return middle
}

// CompleteRoute extends v's route with middle bookings and a final
// ending booking, then evaluates the efficiency gate: the route is
// committed only if active/(active+dead-including-final-home-leg) is
// at least EfficiencyThreshold and the final home leg is at most
// MaxFinalHomeLegKM. On rejection the vehicle is rolled back to
// exactly the state it held when CompleteRoute was called, and marked
// not-routed so it remains available for other fresh bookings.
// Returns the IDs of every booking committed by this call (empty on
// rejection or when no ending booking exists).
func CompleteRoute(v *Vehicle, available, descending, allBookings []Booking, globalAssigned map[int]bool, hexIdx *geo.HexIndex, rules *config.BusinessRules, rates *ratetable.Table, pub *events.Publisher, log *logger.Logger) []int {
	before := v.snapshot()

	ending := FindEndingBooking(v, descending, globalAssigned, rules)
	if ending == nil {
		v.IsRouted = false
		if log != nil {
			log.Infow("no ending booking found, vehicle remains available", "vehicle_id", v.ID)
		}
		return nil
	}

	combined := make(map[int]bool, len(globalAssigned))
	for id := range globalAssigned {
		combined[id] = true
	}

	middle := FindMiddleBookings(v, *ending, available, combined, allBookings, rules)

	var committed []int
	for _, b := range middle {
		Assign(v, b, hexIdx, rules, rates, log)
		committed = append(committed, b.ID)
	}
	Assign(v, *ending, hexIdx, rules, rates, log)
	committed = append(committed, ending.ID)

	finalLegKM := geo.Distance(v.Current, v.Home, rules.Geo.RoadDistanceFactor)
	totalDeadWithHome := v.DeadKM + finalLegKM
	totalKM := v.ActiveKM + totalDeadWithHome
	var efficiency float64
	if totalKM > 0 {
		efficiency = v.ActiveKM / totalKM
	}

	if efficiency < rules.Route.EfficiencyThreshold || finalLegKM > rules.Route.MaxFinalHomeLegKM {
		if log != nil {
			log.Warnw("route rejected by efficiency gate", "vehicle_id", v.ID, "efficiency", efficiency, "final_leg_km", finalLegKM)
		}
		pub.Publish(context.Background(), events.Topics.VehicleRouteRejected, events.NewEvent(events.Topics.VehicleRouteRejected, map[string]interface{}{
			"vehicle_id": v.ID, "efficiency": efficiency, "final_leg_km": finalLegKM,
		}))
		v.restore(before)
		v.IsRouted = false
		return nil
	}

	v.DeadKM = totalDeadWithHome
	v.TotalDriverPay += finalLegKM * rates.DeadPay(int(v.Class))
	v.IsRouted = true

	if log != nil {
		log.Infow("route completed", "vehicle_id", v.ID, "bookings", len(v.Assigned), "efficiency", efficiency)
	}
	pub.Publish(context.Background(), events.Topics.VehicleRouted, events.NewEvent(events.Topics.VehicleRouted, map[string]interface{}{
		"vehicle_id": v.ID, "bookings": len(v.Assigned), "efficiency": efficiency,
	}))

	return committed
}
