package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
)

func TestBuildBuckets_DailyTilingHasNoGaps(t *testing.T) {
	r := DateRange{Start: day(2026, time.August, 25), End: day(2026, time.August, 30), Granularity: GranularityDay}

	buckets, err := BuildBuckets(r)
	require.NoError(t, err)
	require.Len(t, buckets, 6)

	for i, b := range buckets {
		assert.Equal(t, day(2026, time.August, 25+i), b.Start)
		assert.Equal(t, BucketCounts{}, b.Counts, "buckets start zero-filled")
	}
	assert.Equal(t, "25/08", buckets[0].Label)
	assert.Equal(t, "2026-08-25", buckets[0].Key)
}

func TestBuildBuckets_WeeklyAlignsToMonday(t *testing.T) {
	// Aug 12 2026 is a Wednesday; Aug 30 is a Sunday.
	r := DateRange{Start: day(2026, time.August, 12), End: day(2026, time.August, 30), Granularity: GranularityWeek}

	buckets, err := BuildBuckets(r)
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	assert.Equal(t, day(2026, time.August, 10), buckets[0].Start, "first bucket starts on the Monday containing the range start")
	assert.Equal(t, day(2026, time.August, 17), buckets[1].Start)
	assert.Equal(t, day(2026, time.August, 24), buckets[2].Start)
	assert.Equal(t, "10-16 Aug", buckets[0].Label)
}

func TestBuildBuckets_BiweekSeriesFor45DayWindow(t *testing.T) {
	r := DateRange{Start: day(2026, time.July, 16), End: day(2026, time.August, 30), Granularity: GranularityBiweek}

	buckets, err := BuildBuckets(r)
	require.NoError(t, err)
	// 16-31 Jul, 01-15 Aug, 16-31 Aug: far fewer buckets than days.
	require.Len(t, buckets, 3)
	assert.Equal(t, day(2026, time.July, 16), buckets[0].Start)
	assert.Equal(t, day(2026, time.August, 1), buckets[1].Start)
	assert.Equal(t, day(2026, time.August, 16), buckets[2].Start)
	assert.Equal(t, "16-31 Jul", buckets[0].Label)
	assert.Equal(t, "01-15 Aug", buckets[1].Label)
}

func TestBuildBuckets_MonthlySeries(t *testing.T) {
	r := DateRange{Start: day(2026, time.January, 20), End: day(2026, time.April, 2), Granularity: GranularityMonth}

	buckets, err := BuildBuckets(r)
	require.NoError(t, err)
	require.Len(t, buckets, 4)
	assert.Equal(t, "2026-01", buckets[0].Key)
	assert.Equal(t, "Jan 26", buckets[0].Label)
	assert.Equal(t, "2026-04", buckets[3].Key)
}

func TestBuildBuckets_InvalidGranularity(t *testing.T) {
	r := DateRange{Start: day(2026, time.August, 1), End: day(2026, time.August, 2), Granularity: "fortnight"}

	_, err := BuildBuckets(r)
	assert.Error(t, err)
}

func TestBucketStart_BoundaryTieBreaks(t *testing.T) {
	// A date on a boundary belongs to the bucket that starts there.
	monday := day(2026, time.August, 17)
	assert.Equal(t, monday, bucketStart(monday, GranularityWeek))

	// The 15th closes the first half-month; the 16th opens the second.
	assert.Equal(t, day(2026, time.August, 1), bucketStart(day(2026, time.August, 15), GranularityBiweek))
	assert.Equal(t, day(2026, time.August, 16), bucketStart(day(2026, time.August, 16), GranularityBiweek))
}

func TestFoldRecords_ConsultationsConservation(t *testing.T) {
	// The §8-style scenario: 30-day range, 3 appointments, one cancelled.
	r := DateRange{Start: day(2026, time.August, 1), End: day(2026, time.August, 30), Granularity: GranularityDay}
	buckets, err := BuildBuckets(r)
	require.NoError(t, err)

	appointments := []entities.Appointment{
		{ID: "a1", ScheduledAt: day(2026, time.August, 1), Status: entities.AppointmentStatusCompleted, DateValid: true},
		{ID: "a2", ScheduledAt: day(2026, time.August, 1), Status: entities.AppointmentStatusCancelled, DateValid: true},
		{ID: "a3", ScheduledAt: day(2026, time.August, 15), Status: entities.AppointmentStatusPresent, DateValid: true},
	}
	FoldRecords(buckets, r, appointments, nil)

	total := 0
	for _, b := range buckets {
		total += b.Counts.Consultations
	}
	assert.Equal(t, 2, total, "cancelled appointments never count as consultations")
	assert.Equal(t, 1, buckets[0].Counts.Consultations)
	assert.Equal(t, 1, buckets[14].Counts.Consultations)
}

func TestFoldRecords_SameSteppingRuleForKeysAndAssignment(t *testing.T) {
	r := DateRange{Start: day(2026, time.July, 16), End: day(2026, time.August, 30), Granularity: GranularityBiweek}
	buckets, err := BuildBuckets(r)
	require.NoError(t, err)

	// One record per bucket boundary and interior; every one must land.
	dates := []time.Time{
		day(2026, time.July, 16),
		day(2026, time.July, 31),
		day(2026, time.August, 1),
		day(2026, time.August, 15),
		day(2026, time.August, 16),
	}
	appointments := make([]entities.Appointment, 0, len(dates))
	for i, d := range dates {
		appointments = append(appointments, entities.Appointment{
			ID: string(rune('a' + i)), ScheduledAt: d,
			Status: entities.AppointmentStatusCompleted, DateValid: true,
		})
	}
	FoldRecords(buckets, r, appointments, nil)

	assert.Equal(t, 2, buckets[0].Counts.Consultations, "16 and 31 Jul")
	assert.Equal(t, 2, buckets[1].Counts.Consultations, "1 and 15 Aug")
	assert.Equal(t, 1, buckets[2].Counts.Consultations, "16 Aug")
}

func TestFoldRecords_PatientCounts(t *testing.T) {
	r := DateRange{Start: day(2026, time.August, 1), End: day(2026, time.August, 30), Granularity: GranularityWeek}
	buckets, err := BuildBuckets(r)
	require.NoError(t, err)

	patients := []entities.Patient{
		{
			ID: "p1", Status: entities.PatientStatusOperated,
			RegisteredAt: day(2026, time.August, 4), RegistrationValid: true,
			StatusChangedAt: day(2026, time.August, 20), StatusChangeValid: true,
		},
		{
			ID: "p2", Status: entities.PatientStatusFollowUp,
			RegisteredAt: day(2026, time.August, 5), RegistrationValid: true,
			StatusChangedAt: day(2026, time.August, 20), StatusChangeValid: true,
		},
		// No resolvable status-change date: contributes to newPatients only.
		{
			ID: "p3", Status: entities.PatientStatusOperated,
			RegisteredAt: day(2026, time.August, 11), RegistrationValid: true,
		},
		// No resolvable dates at all: contributes to nothing.
		{ID: "p4", Status: entities.PatientStatusOperated},
	}
	FoldRecords(buckets, r, nil, patients)

	newPatients, operated, followUp := 0, 0, 0
	for _, b := range buckets {
		newPatients += b.Counts.NewPatients
		operated += b.Counts.Operated
		followUp += b.Counts.FollowUp
	}
	assert.Equal(t, 3, newPatients)
	assert.Equal(t, 1, operated)
	assert.Equal(t, 1, followUp)

	// Aug 20 2026 falls in the week starting Monday Aug 17.
	for _, b := range buckets {
		if b.Start.Equal(day(2026, time.August, 17)) {
			assert.Equal(t, 1, b.Counts.Operated)
			assert.Equal(t, 1, b.Counts.FollowUp)
		}
	}
}

func TestFoldRecords_RecordsOutsideTheSeriesAreSkipped(t *testing.T) {
	r := DateRange{Start: day(2026, time.August, 10), End: day(2026, time.August, 20), Granularity: GranularityDay}
	buckets, err := BuildBuckets(r)
	require.NoError(t, err)

	appointments := []entities.Appointment{
		{ID: "a1", ScheduledAt: day(2026, time.September, 5), Status: entities.AppointmentStatusCompleted, DateValid: true},
		{ID: "a2", Status: entities.AppointmentStatusCompleted, DateValid: false},
	}
	FoldRecords(buckets, r, appointments, nil)

	for _, b := range buckets {
		assert.Equal(t, 0, b.Counts.Consultations)
	}
}
