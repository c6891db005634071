package dispatch

import (
	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/logger"
	"github.com/fleetops/ride-dispatch/internal/timeutil"
)

// Feasible reports whether v can reach b's pickup location in time:
// the vehicle's earliest arrival (available time plus travel time to
// pickup) must fall no more than 60 minutes after the booking's
// pickup time. Vehicles are allowed to arrive early and wait.
func Feasible(v *Vehicle, b Booking, rules *config.BusinessRules) bool {
	travelKM := geo.Distance(v.Current, b.Pickup, rules.Geo.RoadDistanceFactor)
	travelTime := timeutil.TravelTimeMinutes(travelKM, rules.Geo.AverageSpeedKMH)
	earliestArrival := v.AvailableTime + travelTime
	return earliestArrival <= b.PickupTime+60.0
}

// compatibleClass reports whether a vehicle of class vc may serve a
// booking of class bc: same class, or one class above the booking.
func compatibleClass(vc, bc VehicleClass) bool {
	return vc == bc || vc == bc+1
}

// FindCandidates returns the vehicles eligible to take booking b,
// using an expanding H3 ring search centered on the booking's pickup
// hex. Search starts at ring 0 (same hex) and expands outward up to
// maxRing; the first non-empty ring is returned. If the booking's
// pickup hex cannot be resolved, falls back to a plain scan of every
// eligible vehicle regardless of hex.
func FindCandidates(vehicles []*Vehicle, b Booking, hexIdx *geo.HexIndex, maxRing int, rules *config.BusinessRules, log *logger.Logger) []*Vehicle {
	bookingHex := hexIdx.CellOf(b.Pickup)

	eligible := func(v *Vehicle) bool {
		return !v.IsRouted && v.Class == b.Class && Feasible(v, b, rules)
	}

	if bookingHex == "" {
		var out []*Vehicle
		for _, v := range vehicles {
			if eligible(v) {
				out = append(out, v)
			}
		}
		return out
	}

	for radius := 0; radius <= maxRing; radius++ {
		var ring map[string]bool
		if radius > 0 {
			cells := hexIdx.Ring(bookingHex, radius)
			if len(cells) > 0 {
				ring = make(map[string]bool, len(cells))
				for _, c := range cells {
					ring[c] = true
				}
			}
		}

		var found []*Vehicle
		for _, v := range vehicles {
			if !eligible(v) {
				continue
			}
			switch {
			case radius == 0:
				if v.HexCell == bookingHex {
					found = append(found, v)
				}
			case ring != nil:
				if ring[v.HexCell] {
					found = append(found, v)
				}
			default:
				// Ring computation failed; fall back to a distance-based
				// approximation in rings of ~0.5km each.
				rings := hexIdx.RingDistanceKM(bookingHex, v.HexCell) / 0.5
				if rings <= float64(radius) {
					found = append(found, v)
				}
			}
		}

		if len(found) > 0 {
			if log != nil {
				log.Infow("found candidate vehicles", "booking_id", b.ID, "count", len(found), "search_radius", radius)
			}
			return found
		}
	}

	if log != nil {
		log.Warnw("no candidate vehicles found after expanding search", "booking_id", b.ID, "max_ring", maxRing)
	}
	return nil
}
