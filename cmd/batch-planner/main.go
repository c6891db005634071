// Command batch-planner assigns every known booking in bookings.json
// to a vehicle from vehicles.json at start of day, then prints the
// vehicle summary, booking assignment, and route narrative tables.
package main

import (
	"os"

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

func main() {
	runtimeCfg, err := config.LoadRuntimeConfig()
	if err != nil {
		os.Exit(1)
	}

	log, err := logger.New("batch-planner", runtimeCfg.Environment, runtimeCfg.LogLevel, runtimeCfg.LogPath)
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting batch-planner")

	vehicleSeeds, err := ingest.LoadVehicles(runtimeCfg.VehiclesPath)
	if err != nil {
		log.WithError(err).Fatal(apperrors.Wrap(err, "INPUT_ERROR", "failed to load vehicles").Error())
	}

	bookings, err := ingest.LoadBookings(runtimeCfg.BookingsPath, log)
	if err != nil {
		log.WithError(err).Fatal(apperrors.Wrap(err, "INPUT_ERROR", "failed to load bookings").Error())
	}

	rules := config.DefaultBusinessRules()
	rates := ratetable.Default()
	hexIdx := geo.NewHexIndex(rules.Geo.H3Resolution)
	pub := events.NewPublisher(runtimeCfg.KafkaBrokers, log)
	defer pub.Close()

	planner := dispatch.NewPlanner(vehicleSeeds, hexIdx, rules, rates, pub, log)
	result := planner.Run(bookings)

	log.Infow("batch run complete", "assigned", result.AssignedCount, "unassigned", result.UnassignedCount)

	bookingByID := report.BookingByID(bookings)
	vehicleOf := report.VehicleOf(planner.Vehicles)

	report.VehicleSummary(os.Stdout, planner.Vehicles, bookingByID, rates)
	report.BookingAssignments(os.Stdout, bookings, vehicleOf, map[int]bool{})
	report.RouteNarrative(os.Stdout, planner.Vehicles, &rules.Geo)
	report.PrintMetrics(os.Stdout, report.Summarize(planner.Vehicles, bookings, bookingByID, rates))
}
