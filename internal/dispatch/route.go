package dispatch

import "github.com/fleetops/ride-dispatch/internal/geo"

// DeadKM computes the open-form dead-kilometre cost of a route: home
// to first pickup plus each drop-to-next-pickup gap, omitting the
// final drop-back-home leg. route is an alternating pickup/drop
// waypoint slice; a leg of zero length (consecutive identical points)
// contributes nothing. Use this form while a vehicle's day is still
// open (its committed, running dead-km total); use DeadKMClosed when
// scoring candidates against each other, since the omitted home leg
// differs per candidate's home anchor.
func DeadKM(route []geo.Point, home geo.Point, roadFactor float64) float64 {
	if len(route) < 2 {
		return 0
	}

	var ddm float64

	firstPickup := route[0]
	if firstPickup != home {
		ddm += geo.Distance(home, firstPickup, roadFactor)
	}

	for i := 1; i+1 < len(route); i += 2 {
		drop := route[i]
		nextPickup := route[i+1]
		if drop != nextPickup {
			ddm += geo.Distance(drop, nextPickup, roadFactor)
		}
	}

	return ddm
}

// DeadKMClosed is DeadKM's closed form: it additionally includes the
// final drop back to home. Used wherever a route is scored for
// arg-min selection against a home anchor (§4.6(c)'s middle-booking
// scoring, §4.7(3)'s candidate-vehicle scoring), since those
// comparisons are only sound when every candidate's total dead-km
// accounts for the leg back to its own home.
func DeadKMClosed(route []geo.Point, home geo.Point, roadFactor float64) float64 {
	ddm := DeadKM(route, home, roadFactor)
	if len(route) == 0 {
		return ddm
	}
	last := route[len(route)-1]
	if last != home {
		ddm += geo.Distance(last, home, roadFactor)
	}
	return ddm
}

// ActiveKM sums the active distance of every pickup/drop leg in route
// by matching each leg against the booking lookup; legs with no
// matching booking fall back to geo.Distance (haversine scaled by
// roadFactor).
func ActiveKM(route []geo.Point, bookingsByEndpoints map[[2]geo.Point]float64, roadFactor float64) float64 {
	if len(route) < 2 {
		return 0
	}

	var active float64
	for i := 0; i+1 < len(route); i += 2 {
		pickup := route[i]
		drop := route[i+1]
		if km, ok := bookingsByEndpoints[[2]geo.Point{pickup, drop}]; ok {
			active += km
			continue
		}
		active += geo.Distance(pickup, drop, roadFactor)
	}
	return active
}

// endpointIndex builds the pickup/drop -> active-km lookup ActiveKM
// needs, from the candidate booking set under consideration.
func endpointIndex(bookings []Booking) map[[2]geo.Point]float64 {
	idx := make(map[[2]geo.Point]float64, len(bookings))
	for _, b := range bookings {
		idx[[2]geo.Point{b.Pickup, b.Drop}] = b.DistanceKM
	}
	return idx
}
