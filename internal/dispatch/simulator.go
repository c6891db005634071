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

// Simulator runs the tick-driven real-time dispatch loop: it starts
// from a completed batch plan, then at every tick admits instant
// bookings that have "loaded" by that time, locks any assignment
// whose pickup falls inside the lock window, and re-plans every
// unlocked booking from scratch while leaving locked assignments
// untouched.
type Simulator struct {
	Vehicles []*Vehicle
	HexIdx   *geo.HexIndex
	Rules    *config.BusinessRules
	Rates    *ratetable.Table
	Events   *events.Publisher
	Log      *logger.Logger

	CurrentSimTime float64
	bookingByID    map[int]Booking
	locked         map[int]bool
	dirty          bool // true when a new instant booking has been admitted since the last replan
	replanned      bool // true once at least one replan has run
}

// NewSimulator builds a simulator from a fresh fleet and the day's
// known scheduled bookings: it runs the batch planner once to
// produce the starting routes, then resets every vehicle's clock and
// routed flag so the real-time loop can freely admit instant
// bookings without the scheduled routes blocking them.
func NewSimulator(vehicleSeeds []Vehicle, scheduledBookings []Booking, hexIdx *geo.HexIndex, rules *config.BusinessRules, rates *ratetable.Table, pub *events.Publisher, log *logger.Logger) *Simulator {
	planner := NewPlanner(vehicleSeeds, hexIdx, rules, rates, pub, log)
	planner.Run(scheduledBookings)

	byID := make(map[int]Booking, len(scheduledBookings))
	for _, b := range scheduledBookings {
		byID[b.ID] = b
	}

	for _, v := range planner.Vehicles {
		v.AvailableTime = float64(rules.Schedule.StartOfDayMins)
		v.IsRouted = false
	}

	return &Simulator{
		Vehicles:       planner.Vehicles,
		HexIdx:         hexIdx,
		Rules:          rules,
		Rates:          rates,
		Events:         pub,
		Log:            log,
		CurrentSimTime: float64(rules.Schedule.StartOfDayMins),
		bookingByID:    byID,
		locked:         make(map[int]bool),
	}
}

// LockedBookings returns the set of booking IDs currently locked, as
// of the most recent Tick.
func (s *Simulator) LockedBookings() map[int]bool {
	out := make(map[int]bool, len(s.locked))
	for id := range s.locked {
		out[id] = true
	}
	return out
}

// AdmitInstantBooking registers a newly loaded instant booking so it
// becomes eligible for assignment on the next Tick, and marks the
// simulator dirty so that tick triggers a replan. Admitting the same
// booking ID again is a no-op - callers may safely re-check a
// booking's load time against the current sim clock on every tick
// without re-triggering a replan or re-publishing the admission
// event.
func (s *Simulator) AdmitInstantBooking(b Booking) {
	if existing, ok := s.bookingByID[b.ID]; ok && existing.IsInstant {
		return
	}
	b.IsInstant = true
	s.bookingByID[b.ID] = b
	s.dirty = true
	s.Events.Publish(context.Background(), events.Topics.BookingAdmitted, events.NewEvent(events.Topics.BookingAdmitted, map[string]interface{}{
		"booking_id": b.ID,
	}))
}

// Tick advances the simulation clock by one step and refreshes which
// assignments are locked. The first Tick always re-plans; after that
// it re-plans every unlocked booking only if a new instant booking was
// admitted since the last replan - a tick with no new information
// leaves the existing plan untouched, per the
// source's own replan-gating. Instant bookings are never locked,
// regardless of how soon their pickup is, so they always remain
// available for (re)assignment once admitted.
func (s *Simulator) Tick() {
	s.CurrentSimTime += float64(s.Rules.Schedule.TickStepMins)
	s.updateLockedAssignments()
	if !s.replanned || s.dirty {
		s.reassignUnlocked()
		s.dirty = false
		s.replanned = true
	} else if s.Log != nil {
		s.Log.Infow("no new bookings since last replan, skipping", "sim_time", s.CurrentSimTime)
	}
}

// updateLockedAssignments recomputes which currently-assigned
// bookings fall inside the lock window and advances each vehicle's
// available time to the completion of its last locked booking.
func (s *Simulator) updateLockedAssignments() {
	s.locked = make(map[int]bool)
	lockWindow := s.CurrentSimTime + float64(s.Rules.Schedule.LockWindowMins)

	for _, v := range s.Vehicles {
		completion := s.CurrentSimTime
		v.Locked = v.Locked[:0]
		for _, id := range v.Assigned {
			b, ok := s.bookingByID[id]
			if !ok || b.IsInstant {
				continue
			}
			if b.PickupTime <= s.CurrentSimTime || b.PickupTime <= lockWindow {
				s.locked[id] = true
				v.Locked = append(v.Locked, id)
				s.Events.Publish(context.Background(), events.Topics.BookingLocked, events.NewEvent(events.Topics.BookingLocked, map[string]interface{}{
					"booking_id": id, "vehicle_id": v.ID,
				}))
				bookingCompletion := s.bookingCompletionTime(v, b)
				if bookingCompletion > completion {
					completion = bookingCompletion
				}
			}
		}
		v.AvailableTime = completion
	}
}

// bookingCompletionTime is an approximation of when a booking already
// on a vehicle's route finishes: its pickup time plus active time
// plus the service buffer.
func (s *Simulator) bookingCompletionTime(v *Vehicle, b Booking) float64 {
	active := b.TravelTime
	if active == 0 {
		active = 30
	}
	return b.PickupTime + active + s.Rules.Route.ServiceBufferMins
}

// unlockedBookings collects every assigned-but-unlocked booking plus
// every known, unassigned, unlocked booking (instant or otherwise).
func (s *Simulator) unlockedBookings() []Booking {
	assigned := make(map[int]bool)
	var unlocked []Booking

	for _, v := range s.Vehicles {
		for _, id := range v.Assigned {
			assigned[id] = true
			if !s.locked[id] {
				if b, ok := s.bookingByID[id]; ok {
					unlocked = append(unlocked, b)
				}
			}
		}
	}

	for id, b := range s.bookingByID {
		if !assigned[id] && !s.locked[id] {
			unlocked = append(unlocked, b)
		}
	}

	return unlocked
}

// reassignUnlocked strips every unlocked booking off its vehicle,
// rebuilds each vehicle's state from its locked bookings alone, and
// re-plans the unlocked residue with the same greedy logic the batch
// planner uses - preserving every locked assignment exactly.
func (s *Simulator) reassignUnlocked() {
	unlocked := s.unlockedBookings()

	for _, v := range s.Vehicles {
		lockedIDs := make([]int, 0, len(v.Assigned))
		for _, id := range v.Assigned {
			if s.locked[id] {
				lockedIDs = append(lockedIDs, id)
			}
		}
		s.rebuildFromLocked(v, lockedIDs)
	}

	if len(unlocked) == 0 {
		if s.Log != nil {
			s.Log.Infow("no unlocked bookings to reassign", "sim_time", s.CurrentSimTime)
		}
		s.finalizeRoutes()
		return
	}

	ascending := append([]Booking(nil), unlocked...)
	sort.Slice(ascending, func(i, j int) bool { return ascending[i].PickupTime < ascending[j].PickupTime })
	descending := make([]Booking, len(ascending))
	for i, b := range ascending {
		descending[len(ascending)-1-i] = b
	}

	assigned := make(map[int]bool, len(s.locked))
	for id := range s.locked {
		assigned[id] = true
	}

	assignedCount := 0
	planner := &Planner{Vehicles: s.Vehicles, HexIdx: s.HexIdx, Rules: s.Rules, Rates: s.Rates, Events: s.Events, Log: s.Log, MaxRing: s.Rules.Search.MaxRingSingle}
	for _, booking := range ascending {
		if assigned[booking.ID] {
			continue
		}
		if planner.tryAssign(booking, booking.Class, ascending, descending, assigned, &assignedCount) {
			continue
		}
		if booking.Class < MaxVehicleClass {
			planner.tryAssign(booking, booking.Class+1, ascending, descending, assigned, &assignedCount)
		}
	}

	s.finalizeRoutes()

	if s.Log != nil {
		s.Log.Infow("reassignment complete", "assigned", assignedCount, "locked", len(s.locked), "sim_time", s.CurrentSimTime)
	}
}

// rebuildFromLocked resets a vehicle to its home state and replays
// only its locked bookings, in their original order, so its route,
// position, and accumulated km reflect exactly the locked subset -
// with no final home leg added, since the vehicle is still mid-day.
func (s *Simulator) rebuildFromLocked(v *Vehicle, lockedIDs []int) {
	v.Route = nil
	v.Assigned = nil
	v.ActiveKM = 0
	v.DeadKM = 0
	v.TotalDriverPay = 0
	v.Current = v.Home
	v.AvailableTime = s.CurrentSimTime
	v.HexCell = s.HexIdx.CellOf(v.Home)
	v.IsRouted = false

	for _, id := range lockedIDs {
		b, ok := s.bookingByID[id]
		if !ok {
			continue
		}
		Assign(v, b, s.HexIdx, s.Rules, s.Rates, s.Log)
	}
}

// finalizeRoutes adds the final home leg to every vehicle carrying at
// least one assignment whose route is not already closed (CompleteRoute
// adds the leg itself when it accepts a route), so reported metrics
// reflect a complete route even mid-simulation.
func (s *Simulator) finalizeRoutes() {
	for _, v := range s.Vehicles {
		if len(v.Assigned) == 0 || v.IsRouted {
			continue
		}
		finalLegKM := geo.Distance(v.Current, v.Home, s.Rules.Geo.RoadDistanceFactor)
		v.DeadKM += finalLegKM
		v.TotalDriverPay += finalLegKM * s.Rates.DeadPay(int(v.Class))
		v.IsRouted = true
	}
}
