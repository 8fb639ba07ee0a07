package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
	"github.com/clinstack/dashboard-analytics/internal/infrastructure/observability"
	apperrors "github.com/clinstack/dashboard-analytics/pkg/errors"
)

// Options configure one aggregation run. PatientID, DoctorID and Status are
// narrowing filters, AND-combined, all optional. Now overrides the reference
// "today" for testing; the zero value means the wall clock.
type Options struct {
	Range       RangeOption
	CustomStart *time.Time
	CustomEnd   *time.Time
	PatientID   string
	DoctorID    string
	Status      entities.AppointmentStatus
	Now         time.Time
}

// SkippedCounts is the diagnostics-only tally of records excluded for
// unparsable dates. Skipped records still count toward the totals seen.
type SkippedCounts struct {
	Appointments int `json:"appointments"`
	Patients     int `json:"patients"`
}

// Snapshot is the read-only result of one aggregation run. Consumers must
// treat every field as a point-in-time copy, not live-bound state.
type Snapshot struct {
	ID                     string                  `json:"id"`
	GeneratedAt            time.Time               `json:"generated_at"`
	Range                  DateRange               `json:"range"`
	RangeWasCorrected      bool                    `json:"range_was_corrected"`
	TotalAppointments      int                     `json:"total_appointments"`
	TotalPatients          int                     `json:"total_patients"`
	Skipped                SkippedCounts           `json:"skipped"`
	FilteredAppointments   []entities.Appointment  `json:"filtered_appointments"`
	FilteredPatients       []entities.Patient      `json:"filtered_patients"`
	Buckets                []Bucket                `json:"buckets"`
	Metrics                Metrics                 `json:"metrics"`
	ClassifiedAppointments []ClassifiedAppointment `json:"classified_appointments"`
}

// EngineConfig sizes the engine's caches. A non-positive capacity disables
// the corresponding cache rather than failing.
type EngineConfig struct {
	AdapterCacheCapacity    int
	ClassifierCacheCapacity int
	Metrics                 *observability.EngineMetrics
}

// Engine is the single aggregation entry point every dashboard view shares.
// It composes range resolution, record adaptation, bucketing, metrics and
// classification; views layer their own formatting on top instead of
// re-implementing any of it.
type Engine struct {
	adapter    *RecordAdapter
	classifier *DateClassifier
	metrics    *observability.EngineMetrics
}

// NewEngine creates an aggregation engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		adapter:    NewRecordAdapter(cfg.AdapterCacheCapacity, cfg.Metrics),
		classifier: NewDateClassifier(cfg.ClassifierCacheCapacity, cfg.Metrics),
		metrics:    cfg.Metrics,
	}
}

// ClearCaches drops all memoized state. Aggregation results are always
// re-derivable from the raw records, so this is safe at any time.
func (e *Engine) ClearCaches() {
	e.adapter.ClearCaches()
	e.classifier.Reset()
}

// Aggregate runs the full pipeline over already-loaded record collections.
// Nil collections are programmer errors; data-quality problems inside the
// records only ever surface through the snapshot's counters and flags.
// Identical inputs with unchanged caches produce identical buckets, metrics
// and classifications.
func (e *Engine) Aggregate(
	ctx context.Context,
	rawAppointments []entities.RawAppointment,
	rawPatients []entities.RawPatient,
	opts Options,
) (*Snapshot, error) {
	if rawAppointments == nil {
		return nil, apperrors.NewValidationError("appointments collection is nil")
	}
	if rawPatients == nil {
		return nil, apperrors.NewValidationError("patients collection is nil")
	}
	if opts.Status != "" && !opts.Status.IsValid() {
		return nil, apperrors.NewValidationError("unknown status filter: " + string(opts.Status))
	}

	ctx, span := observability.StartSpan(ctx, "analytics.aggregate")
	defer span.End()
	started := time.Now()

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	// Adapt everything first: the "all" range needs the earliest record
	// date, and skipped tallies cover the whole input, not just the window.
	var skipped SkippedCounts
	var earliest time.Time
	appointments := make([]entities.Appointment, 0, len(rawAppointments))
	for _, raw := range rawAppointments {
		appt := e.adapter.AdaptAppointment(ctx, raw)
		if !appt.DateValid {
			skipped.Appointments++
		} else if earliest.IsZero() || appt.ScheduledAt.Before(earliest) {
			earliest = appt.ScheduledAt
		}
		appointments = append(appointments, appt)
	}
	patients := make([]entities.Patient, 0, len(rawPatients))
	for _, raw := range rawPatients {
		p := e.adapter.AdaptPatient(ctx, raw)
		if !p.RegistrationValid {
			skipped.Patients++
		} else if earliest.IsZero() || p.RegisteredAt.Before(earliest) {
			earliest = p.RegisteredAt
		}
		patients = append(patients, p)
	}

	r, err := ResolveRange(RangeRequest{
		Option:      opts.Range,
		CustomStart: opts.CustomStart,
		CustomEnd:   opts.CustomEnd,
	}, earliest, now)
	if err != nil {
		return nil, err
	}

	filteredAppointments := filterAppointments(appointments, r, opts)
	filteredPatients := filterPatients(patients, r, opts)

	buckets, err := BuildBuckets(r)
	if err != nil {
		return nil, err
	}
	FoldRecords(buckets, r, filteredAppointments, filteredPatients)

	classified := make([]ClassifiedAppointment, 0, len(filteredAppointments))
	for _, appt := range filteredAppointments {
		classified = append(classified, ClassifiedAppointment{
			Appointment:    appt,
			Classification: e.classifier.Classify(ctx, appt.ScheduledAt, now),
		})
	}

	snapshot := &Snapshot{
		ID:                     uuid.New().String(),
		GeneratedAt:            now,
		Range:                  r,
		RangeWasCorrected:      r.WasCorrected,
		TotalAppointments:      len(rawAppointments),
		TotalPatients:          len(rawPatients),
		Skipped:                skipped,
		FilteredAppointments:   filteredAppointments,
		FilteredPatients:       filteredPatients,
		Buckets:                buckets,
		Metrics:                ComputeMetrics(filteredAppointments, filteredPatients),
		ClassifiedAppointments: classified,
	}

	e.metrics.RecordAggregation(ctx, string(opts.Range), time.Since(started))
	e.metrics.RecordSkipped(ctx, "appointment", int64(skipped.Appointments))
	e.metrics.RecordSkipped(ctx, "patient", int64(skipped.Patients))

	observability.LoggerFromContext(ctx).Debug().
		Str("snapshot_id", snapshot.ID).
		Str("range", string(opts.Range)).
		Str("granularity", string(r.Granularity)).
		Int("buckets", len(buckets)).
		Int("appointments_in_window", len(filteredAppointments)).
		Int("patients_in_window", len(filteredPatients)).
		Int("skipped_appointments", skipped.Appointments).
		Int("skipped_patients", skipped.Patients).
		Msg("aggregation complete")

	return snapshot, nil
}

// filterAppointments keeps adapted appointments with a valid date inside the
// window that match every configured filter.
func filterAppointments(appointments []entities.Appointment, r DateRange, opts Options) []entities.Appointment {
	filtered := make([]entities.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if !appt.DateValid || !r.Contains(appt.ScheduledAt) {
			continue
		}
		if opts.PatientID != "" && appt.PatientID != opts.PatientID {
			continue
		}
		if opts.DoctorID != "" && appt.DoctorID != opts.DoctorID {
			continue
		}
		if opts.Status != "" && appt.Status != opts.Status {
			continue
		}
		filtered = append(filtered, appt)
	}
	return filtered
}

// filterPatients keeps adapted patients registered inside the window. The
// doctor and status filters are appointment-scoped and do not apply here.
func filterPatients(patients []entities.Patient, r DateRange, opts Options) []entities.Patient {
	filtered := make([]entities.Patient, 0, len(patients))
	for _, p := range patients {
		if !p.RegistrationValid || !r.Contains(p.RegisteredAt) {
			continue
		}
		if opts.PatientID != "" && p.ID != opts.PatientID {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}
