package analytics

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinstack/dashboard-analytics/internal/adapters/cache"
	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
	"github.com/clinstack/dashboard-analytics/internal/domain/providers"
	"github.com/clinstack/dashboard-analytics/internal/infrastructure/observability"
)

// timestampLayouts are tried in order when parsing record dates. The backend
// emits RFC3339, but exported and hand-entered records show up both without
// zone and as bare dates.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// RecordAdapter normalizes raw appointment and patient records into their
// canonical shapes, memoizing the work behind bounded caches. Cache keys are
// a fingerprint of the fields that feed adaptation, never the record id
// alone, so a record edited in place is re-adapted rather than served stale.
type RecordAdapter struct {
	appointments providers.CacheProvider[string, entities.Appointment]
	patients     providers.CacheProvider[string, entities.Patient]
	metrics      *observability.EngineMetrics
	logger       zerolog.Logger
}

// NewRecordAdapter creates an adapter whose caches hold up to capacity
// entries each. A non-positive capacity disables caching.
func NewRecordAdapter(capacity int, metrics *observability.EngineMetrics) *RecordAdapter {
	return &RecordAdapter{
		appointments: cache.NewLRUAdapter[string, entities.Appointment](capacity),
		patients:     cache.NewLRUAdapter[string, entities.Patient](capacity),
		metrics:      metrics,
		logger:       observability.ComponentLogger("adapter"),
	}
}

// AdaptAppointment converts a raw appointment into its canonical form.
// A malformed timestamp never aborts adaptation: the result carries
// DateValid=false and the record is left out of date-based views downstream.
func (a *RecordAdapter) AdaptAppointment(ctx context.Context, raw entities.RawAppointment) entities.Appointment {
	key := appointmentFingerprint(raw)
	if v, ok := a.appointments.Get(key); ok {
		a.metrics.RecordCacheHit(ctx, "appointments")
		return v
	}
	a.metrics.RecordCacheMiss(ctx, "appointments")

	adapted := entities.Appointment{
		ID:           raw.ID,
		PatientID:    raw.PatientID,
		DoctorID:     raw.DoctorID,
		Status:       raw.Status,
		Motive:       strings.TrimSpace(raw.Motive),
		IsFirstVisit: raw.IsFirstVisit,
	}
	if !raw.Status.IsValid() {
		adapted.Status = entities.AppointmentStatusScheduled
	}

	if t, ok := parseClinicalTime(raw.Timestamp); ok {
		adapted.ScheduledAt = t
		adapted.TimeOfDay = t.Format("15:04")
		adapted.DateValid = true
	} else {
		a.logger.Warn().
			Str("appointment_id", raw.ID).
			Str("timestamp", raw.Timestamp).
			Msg("unparsable appointment timestamp, excluding from date-based views")
	}

	a.appointments.Set(key, adapted)
	return adapted
}

// AdaptPatient converts a raw patient into its canonical form. Optional date
// fields that are absent are not data-quality problems; only a present but
// unparsable registration date marks the record invalid.
func (a *RecordAdapter) AdaptPatient(ctx context.Context, raw entities.RawPatient) entities.Patient {
	key := patientFingerprint(raw)
	if v, ok := a.patients.Get(key); ok {
		a.metrics.RecordCacheHit(ctx, "patients")
		return v
	}
	a.metrics.RecordCacheMiss(ctx, "patients")

	adapted := entities.Patient{
		ID:                 raw.ID,
		Name:               raw.FullName(),
		Status:             raw.Status,
		PrimaryDiagnosis:   strings.TrimSpace(raw.PrimaryDiagnosis),
		SurgeryProbability: raw.SurgeryProbability,
		Source:             strings.TrimSpace(raw.Source),
	}
	if !raw.Status.IsValid() {
		adapted.Status = entities.PatientStatusPotential
	}

	if t, ok := parseClinicalTime(raw.RegistrationDate); ok {
		adapted.RegisteredAt = t
		adapted.RegistrationValid = true
	} else {
		a.logger.Warn().
			Str("patient_id", raw.ID).
			Str("registration_date", raw.RegistrationDate).
			Msg("unparsable patient registration date, excluding from date-based views")
	}

	if raw.UpdatedAt != "" {
		if t, ok := parseClinicalTime(raw.UpdatedAt); ok {
			adapted.StatusChangedAt = t
			adapted.StatusChangeValid = true
		} else {
			a.logger.Warn().
				Str("patient_id", raw.ID).
				Str("updated_at", raw.UpdatedAt).
				Msg("unparsable patient status-change date")
		}
	}

	if raw.ScheduledSurgeryDate != "" {
		if t, ok := parseClinicalTime(raw.ScheduledSurgeryDate); ok {
			adapted.SurgeryDate = &t
		}
	}

	a.patients.Set(key, adapted)
	return adapted
}

// ClearCaches drops all memoized adaptations.
func (a *RecordAdapter) ClearCaches() {
	a.appointments.Clear()
	a.patients.Clear()
}

// parseClinicalTime parses an ISO-ish date string. Empty input is simply
// absent, not malformed.
func parseClinicalTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// appointmentFingerprint keys the cache on everything adaptation reads.
func appointmentFingerprint(raw entities.RawAppointment) string {
	return strings.Join([]string{
		raw.ID,
		raw.Timestamp,
		string(raw.Status),
		raw.Motive,
		raw.PatientID,
		raw.DoctorID,
		strconv.FormatBool(raw.IsFirstVisit),
	}, "|")
}

// patientFingerprint keys the cache on the record id plus updated-at. When a
// record has no updated-at, the remaining adapted fields stand in so edits
// still change the key.
func patientFingerprint(raw entities.RawPatient) string {
	if raw.UpdatedAt != "" {
		return raw.ID + "|" + raw.UpdatedAt
	}
	probability := ""
	if raw.SurgeryProbability != nil {
		probability = strconv.FormatFloat(*raw.SurgeryProbability, 'f', -1, 64)
	}
	return strings.Join([]string{
		raw.ID,
		raw.RegistrationDate,
		string(raw.Status),
		raw.FirstName,
		raw.LastName,
		raw.PrimaryDiagnosis,
		raw.ScheduledSurgeryDate,
		raw.Source,
		probability,
	}, "|")
}
