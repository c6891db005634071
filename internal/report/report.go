// Package report renders planner and simulator state into
// human-readable tables, written to the io.Writer each function is
// given (the CLI entry points pass stdout; the tables do not go to
// log.txt). It is
// a pure function of dispatch state plus the bookings/rates that
// produced it - the core engine never depends on this package.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/dispatch"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
)

// VehicleSummary renders one row per vehicle: bookings carried,
// active/dead km, fare, pay, profit, and efficiency.
func VehicleSummary(w io.Writer, vehicles []*dispatch.Vehicle, bookingByID map[int]dispatch.Booking, rates *ratetable.Table) {
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "VEHICLE\tTYPE\tBOOKINGS\tACTIVE_KM\tDEAD_KM\tFARE\tPAY\tPROFIT\tEFFICIENCY")

	for _, v := range vehicles {
		var fare float64
		for _, id := range v.Assigned {
			b, ok := bookingByID[id]
			if !ok {
				continue
			}
			fare += rates.Fare(b.DistanceKM, int(v.Class))
		}
		total := v.ActiveKM + v.DeadKM
		var efficiency float64
		if total > 0 {
			efficiency = v.ActiveKM / total
		}
		profit := fare - v.TotalDriverPay

		fmt.Fprintf(tw, "%d\tclass%d\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\n",
			v.ID, v.Class, len(v.Assigned), v.ActiveKM, v.DeadKM, fare, v.TotalDriverPay, profit, efficiency)
	}
	tw.Flush()
}

// BookingAssignments renders one row per booking: its vehicle (if
// any), lock status, and scheduled/instant origin.
func BookingAssignments(w io.Writer, bookings []dispatch.Booking, vehicleOf map[int]int, locked map[int]bool) {
	ordered := append([]dispatch.Booking(nil), bookings...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "BOOKING\tTYPE\tDISTANCE_KM\tPICKUP_MIN\tVEHICLE\tLOCKED\tORIGIN")

	for _, b := range ordered {
		vehicleID := "-"
		if id, ok := vehicleOf[b.ID]; ok {
			vehicleID = fmt.Sprintf("%d", id)
		}
		origin := "scheduled"
		if b.IsInstant {
			origin = "instant"
		}
		fmt.Fprintf(tw, "%d\tclass%d\t%.2f\t%.0f\t%s\t%v\t%s\n",
			b.ID, b.Class, b.DistanceKM, b.PickupTime, vehicleID, locked[b.ID], origin)
	}
	tw.Flush()
}

// RouteNarrative renders, for each vehicle with at least one booking,
// the sequence of legs it drove with per-leg distance; the final leg
// home is shown only for routed vehicles.
func RouteNarrative(w io.Writer, vehicles []*dispatch.Vehicle, rules *config.GeoRules) {
	for _, v := range vehicles {
		if len(v.Assigned) == 0 {
			continue
		}
		fmt.Fprintf(w, "vehicle %d (class%d) home %.5f,%.5f:\n", v.ID, v.Class, v.Home.Lat, v.Home.Lng)

		prev := v.Home
		for i := 0; i+1 < len(v.Route); i += 2 {
			pickup := v.Route[i]
			drop := v.Route[i+1]
			deadLeg := geo.Distance(prev, pickup, rules.RoadDistanceFactor)
			activeLeg := geo.Distance(pickup, drop, rules.RoadDistanceFactor)
			fmt.Fprintf(w, "  -> pickup %.5f,%.5f (dead %.2f km)\n", pickup.Lat, pickup.Lng, deadLeg)
			fmt.Fprintf(w, "  -> drop   %.5f,%.5f (active %.2f km)\n", drop.Lat, drop.Lng, activeLeg)
			prev = drop
		}
		if v.IsRouted {
			homeLeg := geo.Distance(prev, v.Home, rules.RoadDistanceFactor)
			fmt.Fprintf(w, "  -> home   %.5f,%.5f (dead %.2f km)\n", v.Home.Lat, v.Home.Lng, homeLeg)
		}
	}
}

// Metrics is the final aggregate summary across the whole fleet.
type Metrics struct {
	TotalVehicles    int
	RoutedVehicles   int
	TotalBookings    int
	AssignedBookings int
	TotalActiveKM    float64
	TotalDeadKM      float64
	TotalFare        float64
	TotalPay         float64
	TotalProfit      float64
}

// OverallEfficiency is TotalActiveKM / (TotalActiveKM + TotalDeadKM).
func (m Metrics) OverallEfficiency() float64 {
	total := m.TotalActiveKM + m.TotalDeadKM
	if total == 0 {
		return 0
	}
	return m.TotalActiveKM / total
}

// AssignmentRate is AssignedBookings / TotalBookings.
func (m Metrics) AssignmentRate() float64 {
	if m.TotalBookings == 0 {
		return 0
	}
	return float64(m.AssignedBookings) / float64(m.TotalBookings)
}

// Summarize aggregates final metrics across every vehicle and the
// full booking set.
func Summarize(vehicles []*dispatch.Vehicle, allBookings []dispatch.Booking, bookingByID map[int]dispatch.Booking, rates *ratetable.Table) Metrics {
	m := Metrics{TotalVehicles: len(vehicles), TotalBookings: len(allBookings)}

	assigned := make(map[int]bool)
	for _, v := range vehicles {
		if v.IsRouted {
			m.RoutedVehicles++
		}
		m.TotalActiveKM += v.ActiveKM
		m.TotalDeadKM += v.DeadKM
		m.TotalPay += v.TotalDriverPay
		for _, id := range v.Assigned {
			assigned[id] = true
			if b, ok := bookingByID[id]; ok {
				m.TotalFare += rates.Fare(b.DistanceKM, int(v.Class))
			}
		}
	}
	m.AssignedBookings = len(assigned)
	m.TotalProfit = m.TotalFare - m.TotalPay

	return m
}

// PrintMetrics writes the final summary line block.
func PrintMetrics(w io.Writer, m Metrics) {
	fmt.Fprintf(w, "vehicles: %d total, %d routed\n", m.TotalVehicles, m.RoutedVehicles)
	fmt.Fprintf(w, "bookings: %d total, %d assigned (%.1f%%)\n", m.TotalBookings, m.AssignedBookings, m.AssignmentRate()*100)
	fmt.Fprintf(w, "active km: %.2f, dead km: %.2f, efficiency: %.3f\n", m.TotalActiveKM, m.TotalDeadKM, m.OverallEfficiency())
	fmt.Fprintf(w, "fare: %.2f, pay: %.2f, profit: %.2f\n", m.TotalFare, m.TotalPay, m.TotalProfit)
}

// AssignmentChange describes one booking's vehicle assignment
// changing between two ticks of the real-time simulator.
type AssignmentChange struct {
	BookingID int
	OldVehicle int // 0 means previously unassigned
	NewVehicle int // 0 means now unassigned
}

// DiffAssignments compares two vehicle-id snapshots keyed by booking
// ID and reports every booking whose vehicle changed.
func DiffAssignments(before, after map[int]int) []AssignmentChange {
	var changes []AssignmentChange
	seen := make(map[int]bool, len(before)+len(after))

	for id, oldV := range before {
		seen[id] = true
		newV := after[id]
		if newV != oldV {
			changes = append(changes, AssignmentChange{BookingID: id, OldVehicle: oldV, NewVehicle: newV})
		}
	}
	for id, newV := range after {
		if seen[id] {
			continue
		}
		changes = append(changes, AssignmentChange{BookingID: id, OldVehicle: 0, NewVehicle: newV})
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].BookingID < changes[j].BookingID })
	return changes
}

// PrintAssignmentChanges writes one line per changed booking.
func PrintAssignmentChanges(w io.Writer, simTime float64, changes []AssignmentChange) {
	if len(changes) == 0 {
		return
	}
	fmt.Fprintf(w, "tick %.0f: %d assignment change(s)\n", simTime, len(changes))
	for _, c := range changes {
		switch {
		case c.OldVehicle == 0:
			fmt.Fprintf(w, "  booking %d -> vehicle %d (new)\n", c.BookingID, c.NewVehicle)
		case c.NewVehicle == 0:
			fmt.Fprintf(w, "  booking %d -> unassigned (was vehicle %d)\n", c.BookingID, c.OldVehicle)
		default:
			fmt.Fprintf(w, "  booking %d: vehicle %d -> %d\n", c.BookingID, c.OldVehicle, c.NewVehicle)
		}
	}
}

// VehicleOf builds a booking-id -> vehicle-id lookup from the current
// fleet state, for BookingAssignments and DiffAssignments.
func VehicleOf(vehicles []*dispatch.Vehicle) map[int]int {
	out := make(map[int]int)
	for _, v := range vehicles {
		for _, id := range v.Assigned {
			out[id] = v.ID
		}
	}
	return out
}

// BookingByID indexes a booking slice by ID.
func BookingByID(bookings []dispatch.Booking) map[int]dispatch.Booking {
	out := make(map[int]dispatch.Booking, len(bookings))
	for _, b := range bookings {
		out[b.ID] = b
	}
	return out
}
