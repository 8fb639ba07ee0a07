package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
)

// maxDecisionSpanDays bounds plausible consult-to-decision spans; anything
// negative or a year or more is a data-entry error and is excluded from the
// average, not clipped into it.
const maxDecisionSpanDays = 365

// topDiagnosesLimit truncates the diagnosis histogram for display.
const topDiagnosesLimit = 5

// DiagnosisCount is one row of the diagnosis frequency histogram.
type DiagnosisCount struct {
	Diagnosis string `json:"diagnosis"`
	Count     int    `json:"count"`
}

// WeekdayStats holds per-weekday appointment volume and attendance.
type WeekdayStats struct {
	Weekday        string  `json:"weekday"`
	Appointments   int     `json:"appointments"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// Metrics are the clinic-level statistics derived from the filtered record
// set. Every rate is 0 when its denominator is empty, never NaN.
type Metrics struct {
	TotalAppointments         int              `json:"total_appointments"`
	AttendanceRate            float64          `json:"attendance_rate"`
	CancellationRate          float64          `json:"cancellation_rate"`
	ConversionRate            float64          `json:"conversion_rate"`
	AverageDecisionDays       float64          `json:"average_decision_days"`
	TopDiagnoses              []DiagnosisCount `json:"top_diagnoses"`
	WeekdayDistribution       []WeekdayStats   `json:"weekday_distribution"`
	ConsultationsByDoctor     map[string]int   `json:"consultations_by_doctor"`
	AverageSurgeryProbability float64          `json:"average_surgery_probability"`
}

// ComputeMetrics derives aggregate statistics over the filtered (not
// bucketed) record set.
func ComputeMetrics(appointments []entities.Appointment, patients []entities.Patient) Metrics {
	m := Metrics{
		TotalAppointments:     len(appointments),
		TopDiagnoses:          topDiagnoses(patients),
		WeekdayDistribution:   weekdayDistribution(appointments),
		ConsultationsByDoctor: consultationsByDoctor(appointments),
	}

	attended, missed := 0, 0
	for _, appt := range appointments {
		if appt.Status.Attended() {
			attended++
		}
		if appt.Status.Missed() {
			missed++
		}
	}
	m.AttendanceRate = safeRate(attended, len(appointments))
	m.CancellationRate = safeRate(missed, len(appointments))

	operated, terminal := 0, 0
	probabilitySum, probabilityCount := 0.0, 0
	for _, p := range patients {
		if p.Status.IsTerminal() {
			terminal++
			if p.Status == entities.PatientStatusOperated {
				operated++
			}
			continue
		}
		if p.SurgeryProbability != nil {
			probabilitySum += *p.SurgeryProbability
			probabilityCount++
		}
	}
	m.ConversionRate = safeRate(operated, terminal)
	if probabilityCount > 0 {
		m.AverageSurgeryProbability = probabilitySum / float64(probabilityCount)
	}

	m.AverageDecisionDays = averageDecisionDays(appointments, patients)
	return m
}

// averageDecisionDays is the mean whole-day span between a patient's first
// consultation and their terminal decision, over patients where both dates
// resolve to a plausible span.
func averageDecisionDays(appointments []entities.Appointment, patients []entities.Patient) float64 {
	firstConsult := make(map[string]time.Time, len(patients))
	for _, appt := range appointments {
		if !appt.DateValid || appt.Status == entities.AppointmentStatusCancelled {
			continue
		}
		day := truncateDay(appt.ScheduledAt)
		if cur, ok := firstConsult[appt.PatientID]; !ok || day.Before(cur) {
			firstConsult[appt.PatientID] = day
		}
	}

	totalDays, counted := 0, 0
	for _, p := range patients {
		if !p.Status.IsTerminal() || !p.StatusChangeValid {
			continue
		}
		first, ok := firstConsult[p.ID]
		if !ok {
			if !p.RegistrationValid {
				continue
			}
			first = truncateDay(p.RegisteredAt)
		}
		days := int(truncateDay(p.StatusChangedAt).Sub(first).Hours() / 24)
		if days < 0 || days >= maxDecisionSpanDays {
			continue
		}
		totalDays += days
		counted++
	}
	if counted == 0 {
		return 0
	}
	return float64(totalDays) / float64(counted)
}

// topDiagnoses builds the normalized diagnosis histogram, descending by
// count, ties broken by first-seen order, truncated to the display limit.
func topDiagnoses(patients []entities.Patient) []DiagnosisCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	order := 0
	for _, p := range patients {
		d := normalizeDiagnosis(p.PrimaryDiagnosis)
		if d == "" {
			continue
		}
		if _, ok := counts[d]; !ok {
			firstSeen[d] = order
			order++
		}
		counts[d]++
	}

	histogram := make([]DiagnosisCount, 0, len(counts))
	for d, n := range counts {
		histogram = append(histogram, DiagnosisCount{Diagnosis: d, Count: n})
	}
	sort.SliceStable(histogram, func(i, j int) bool {
		if histogram[i].Count != histogram[j].Count {
			return histogram[i].Count > histogram[j].Count
		}
		return firstSeen[histogram[i].Diagnosis] < firstSeen[histogram[j].Diagnosis]
	})
	if len(histogram) > topDiagnosesLimit {
		histogram = histogram[:topDiagnosesLimit]
	}
	return histogram
}

// weekdayDistribution counts appointments and attendance per weekday,
// Monday through Sunday, always at daily granularity regardless of the
// chart's bucket width.
func weekdayDistribution(appointments []entities.Appointment) []WeekdayStats {
	names := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	counts := make([]int, 7)
	attended := make([]int, 7)
	for _, appt := range appointments {
		if !appt.DateValid {
			continue
		}
		idx := (int(appt.ScheduledAt.Weekday()) + 6) % 7
		counts[idx]++
		if appt.Status.Attended() {
			attended[idx]++
		}
	}

	stats := make([]WeekdayStats, 7)
	for i, name := range names {
		stats[i] = WeekdayStats{
			Weekday:        name,
			Appointments:   counts[i],
			AttendanceRate: safeRate(attended[i], counts[i]),
		}
	}
	return stats
}

// consultationsByDoctor counts non-cancelled appointments per doctor.
func consultationsByDoctor(appointments []entities.Appointment) map[string]int {
	byDoctor := make(map[string]int)
	for _, appt := range appointments {
		if appt.Status == entities.AppointmentStatusCancelled || appt.DoctorID == "" {
			continue
		}
		byDoctor[appt.DoctorID]++
	}
	return byDoctor
}

// normalizeDiagnosis collapses case and whitespace for histogram grouping.
func normalizeDiagnosis(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// safeRate divides, resolving an empty denominator to 0 rather than NaN.
func safeRate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}
