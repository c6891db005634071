// Command realtime-simulator runs the tick-driven dispatch loop: it
// starts from the same batch plan as batch-planner, then admits
// instant bookings from instant_bookings.json as their random load
// time arrives, refreshing locks on every tick and re-planning on the
// first tick and on any tick after a new admission.
package main

import (
	"math/rand"
	"os"
	"time"

	"github.com/fleetops/ride-dispatch/internal/apperrors"
	"github.com/fleetops/ride-dispatch/internal/config"
	"github.com/fleetops/ride-dispatch/internal/dispatch"
	"github.com/fleetops/ride-dispatch/internal/events"
	"github.com/fleetops/ride-dispatch/internal/geo"
	"github.com/fleetops/ride-dispatch/internal/ingest"
	"github.com/fleetops/ride-dispatch/internal/logger"
	"github.com/fleetops/ride-dispatch/internal/ratetable"
	"github.com/fleetops/ride-dispatch/internal/report"
)

// ticksUntilEndOfDay bounds the simulation to a single operating day:
// from 06:00 (start of day) to 22:00, at 30-minute ticks, is 32 ticks.
const ticksUntilEndOfDay = 32

func main() {
	runtimeCfg, err := config.LoadRuntimeConfig()
	if err != nil {
		os.Exit(1)
	}

	log, err := logger.New("realtime-simulator", runtimeCfg.Environment, runtimeCfg.LogLevel, runtimeCfg.LogPath)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting realtime-simulator")

	vehicleSeeds, err := ingest.LoadVehicles(runtimeCfg.VehiclesPath)
	if err != nil {
		log.WithError(err).Fatal(apperrors.Wrap(err, "INPUT_ERROR", "failed to load vehicles").Error())
	}

	scheduled, err := ingest.LoadBookings(runtimeCfg.BookingsPath, log)
	if err != nil {
		log.WithError(err).Fatal(apperrors.Wrap(err, "INPUT_ERROR", "failed to load bookings").Error())
	}

	instant, err := ingest.LoadBookings(runtimeCfg.InstantBookingsPath, log)
	if err != nil {
		log.WithError(err).Fatal(apperrors.Wrap(err, "INPUT_ERROR", "failed to load instant bookings").Error())
	}

	rules := config.DefaultBusinessRules()
	rates := ratetable.Default()
	hexIdx := geo.NewHexIndex(rules.Geo.H3Resolution)
	pub := events.NewPublisher(runtimeCfg.KafkaBrokers, log)
	defer pub.Close()

	sim := dispatch.NewSimulator(vehicleSeeds, scheduled, hexIdx, rules, rates, pub, log)

	loadTimes := assignLoadTimes(instant, float64(rules.Schedule.StartOfDayMins))

	allBookings := append(append([]dispatch.Booking(nil), scheduled...), instant...)
	prevVehicleOf := report.VehicleOf(sim.Vehicles)
	admitted := make([]bool, len(instant))
	realStep := time.Duration(rules.Schedule.RealStepSeconds) * time.Second

	for tick := 0; tick < ticksUntilEndOfDay; tick++ {
		for i, b := range instant {
			if !admitted[i] && loadTimes[i] <= sim.CurrentSimTime {
				sim.AdmitInstantBooking(b)
				admitted[i] = true
			}
		}

		sim.Tick()

		vehicleOf := report.VehicleOf(sim.Vehicles)
		changes := report.DiffAssignments(prevVehicleOf, vehicleOf)
		report.PrintAssignmentChanges(os.Stdout, sim.CurrentSimTime, changes)
		prevVehicleOf = vehicleOf

		if realStep > 0 && tick < ticksUntilEndOfDay-1 {
			time.Sleep(realStep)
		}
	}

	log.Info("simulation complete")

	bookingByID := report.BookingByID(allBookings)
	vehicleOf := report.VehicleOf(sim.Vehicles)

	report.VehicleSummary(os.Stdout, sim.Vehicles, bookingByID, rates)
	report.BookingAssignments(os.Stdout, allBookings, vehicleOf, sim.LockedBookings())
	report.RouteNarrative(os.Stdout, sim.Vehicles, &rules.Geo)
	report.PrintMetrics(os.Stdout, report.Summarize(sim.Vehicles, allBookings, bookingByID, rates))
}

// assignLoadTimes draws, once per instant booking, a load time
// uniform in [max(start, pickup-120), pickup-60], or that lower bound
// itself if the range is empty - matching the source data's own
// admission-window sampling.
func assignLoadTimes(bookings []dispatch.Booking, start float64) []float64 {
	loadTimes := make([]float64, len(bookings))
	for i, b := range bookings {
		lo := b.PickupTime - 120
		if lo < start {
			lo = start
		}
		hi := b.PickupTime - 60
		if hi <= lo {
			loadTimes[i] = lo
			continue
		}
		loadTimes[i] = lo + float64(rand.Intn(int(hi-lo)+1))
	}
	return loadTimes
}
