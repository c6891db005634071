package dispatch

import (
	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/logger"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
	"github.com/fleetops/ride-dispatch/internal/timeutil"
)

// Assign is the sole mutator of vehicle state: it appends booking b
// to v's route, advances the vehicle's position and clock, and
// recomputes the vehicle's active/dead km and driver pay. Every other
// operation in this package builds routes by calling Assign
// repeatedly and, where needed, rolling back via snapshot/restore.
func Assign(v *Vehicle, b Booking, hexIdx *geo.HexIndex, rules *config.BusinessRules, rates *ratetable.Table, log *logger.Logger) {
	travelToPickupKM := geo.Distance(v.Current, b.Pickup, rules.Geo.RoadDistanceFactor)

	v.Route = append(v.Route, b.Pickup, b.Drop)
	v.Assigned = append(v.Assigned, b.ID)

	v.Current = b.Drop

	travelTime := timeutil.TravelTimeMinutes(travelToPickupKM, rules.Geo.AverageSpeedKMH)
	activeTime := b.TravelTime
	if activeTime == 0 {
		activeTime = 30
	}

	earliestArrival := v.AvailableTime + travelTime
	actualPickupStart := earliestArrival
	if b.PickupTime > actualPickupStart {
		actualPickupStart = b.PickupTime
	}
	v.AvailableTime = actualPickupStart + activeTime + rules.Route.ServiceBufferMins

	v.ActiveKM += b.DistanceKM
	v.DeadKM = DeadKM(v.Route, v.Home, rules.Geo.RoadDistanceFactor)
	if hexIdx != nil {
		v.HexCell = hexIdx.CellOf(v.Current)
	}

	activePay := rates.ActivePay(int(v.Class))
	deadPay := rates.DeadPay(int(v.Class))
	v.TotalDriverPay += (b.DistanceKM * activePay) + (travelToPickupKM * deadPay)

	if log != nil {
		log.Infow("assigned booking to vehicle", "booking_id", b.ID, "vehicle_id", v.ID)
	}
}
