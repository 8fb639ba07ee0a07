package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/clinstack/dashboard-analytics/internal/analytics"
	"github.com/clinstack/dashboard-analytics/internal/infrastructure/observability"
	"github.com/clinstack/dashboard-analytics/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	rangeOption := flag.String("range", cfg.Analytics.DefaultRange, "date range option: 7d, 30d, 90d, ytd, all")
	appointmentsPath := flag.String("appointments", cfg.Fixtures.AppointmentsPath, "path to appointments JSON")
	patientsPath := flag.String("patients", cfg.Fixtures.PatientsPath, "path to patients JSON")
	doctorID := flag.String("doctor", "", "optional doctor filter")
	patientID := flag.String("patient", "", "optional patient filter")
	flag.Parse()

	selectedRange := analytics.RangeOption(*rangeOption)
	if !selectedRange.IsValid() {
		log.Fatalf("Unknown range option: %s", *rangeOption)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var engineMetrics *observability.EngineMetrics
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Printf("Warning: Failed to set up OpenTelemetry: %v", err)
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down OpenTelemetry: %v", err)
				}
			}()
			engineMetrics, err = observability.InitEngineMetrics()
			if err != nil {
				log.Fatalf("Failed to initialize metrics: %v", err)
			}
		}
	}

	appointments, err := analytics.LoadRawAppointments(*appointmentsPath)
	if err != nil {
		log.Fatalf("Failed to load appointments: %v", err)
	}
	patients, err := analytics.LoadRawPatients(*patientsPath)
	if err != nil {
		log.Fatalf("Failed to load patients: %v", err)
	}

	logger := observability.GetLogger()
	logger.Info().
		Int("appointments", len(appointments)).
		Int("patients", len(patients)).
		Str("range", string(selectedRange)).
		Msg("records loaded")

	engine := analytics.NewEngine(analytics.EngineConfig{
		AdapterCacheCapacity:    cfg.Analytics.AdapterCacheCapacity,
		ClassifierCacheCapacity: cfg.Analytics.ClassifierCacheCapacity,
		Metrics:                 engineMetrics,
	})

	snapshot, err := engine.Aggregate(ctx, appointments, patients, analytics.Options{
		Range:     selectedRange,
		DoctorID:  *doctorID,
		PatientID: *patientID,
	})
	if err != nil {
		log.Fatalf("Aggregation failed: %v", err)
	}

	// Output the snapshot as JSON
	out, _ := json.MarshalIndent(snapshot, "", "  ")
	fmt.Println(string(out))
}
