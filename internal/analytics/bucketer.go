package analytics

import (
	"fmt"
	"time"

	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
	apperrors "github.com/clinstack/dashboard-analytics/pkg/errors"
)

// BucketCounts holds the per-period aggregates a dashboard chart renders.
type BucketCounts struct {
	Consultations int `json:"consultations"`
	Operated      int `json:"operated"`
	NewPatients   int `json:"new_patients"`
	FollowUp      int `json:"follow_up"`
}

// Bucket is one fixed time slice of the chart series.
type Bucket struct {
	Key    string       `json:"key"`
	Label  string       `json:"label"`
	Start  time.Time    `json:"start"`
	Counts BucketCounts `json:"counts"`
}

// BuildBuckets generates the zero-filled bucket series tiling the window at
// its granularity. Every period between start and end gets a bucket even when
// no record will land in it, so charts never show gaps. The series starts at
// the granularity-aligned boundary containing r.Start and ends at the one
// containing r.End, in chronological order.
func BuildBuckets(r DateRange) ([]Bucket, error) {
	if !r.Granularity.IsValid() {
		return nil, apperrors.NewValidationError("invalid granularity: " + string(r.Granularity))
	}

	buckets := make([]Bucket, 0, estimateBucketCount(r))
	cur := bucketStart(r.Start, r.Granularity)
	last := bucketStart(r.End, r.Granularity)
	for !cur.After(last) {
		buckets = append(buckets, Bucket{
			Key:   bucketKey(cur, r.Granularity),
			Label: bucketLabel(cur, r.Granularity),
			Start: cur,
		})
		cur = nextBucketStart(cur, r.Granularity)
	}
	return buckets, nil
}

// FoldRecords folds adapted records into the matching buckets in place.
// Assignment reuses the exact truncation rule that generated the bucket keys,
// with record timestamps first converted onto the window's own calendar so a
// UTC record and a non-UTC window agree on which day it belongs to. A record
// whose key is not in the series (outside the window) is skipped. Cancelled
// appointments never count as consultations, and a patient with no resolvable
// date for a given metric contributes nothing to it.
func FoldRecords(buckets []Bucket, r DateRange, appointments []entities.Appointment, patients []entities.Patient) {
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Key] = i
	}

	g := r.Granularity
	loc := r.Start.Location()

	for _, appt := range appointments {
		if !appt.DateValid || appt.Status == entities.AppointmentStatusCancelled {
			continue
		}
		if i, ok := index[bucketKey(bucketStart(appt.ScheduledAt.In(loc), g), g)]; ok {
			buckets[i].Counts.Consultations++
		}
	}

	for _, p := range patients {
		if p.RegistrationValid {
			if i, ok := index[bucketKey(bucketStart(p.RegisteredAt.In(loc), g), g)]; ok {
				buckets[i].Counts.NewPatients++
			}
		}
		if !p.StatusChangeValid {
			continue
		}
		switch p.Status {
		case entities.PatientStatusOperated:
			if i, ok := index[bucketKey(bucketStart(p.StatusChangedAt.In(loc), g), g)]; ok {
				buckets[i].Counts.Operated++
			}
		case entities.PatientStatusFollowUp:
			if i, ok := index[bucketKey(bucketStart(p.StatusChangedAt.In(loc), g), g)]; ok {
				buckets[i].Counts.FollowUp++
			}
		}
	}
}

// bucketStart truncates a date to the start of its bucket. A date sitting
// exactly on a bucket boundary belongs to the bucket that starts there,
// never the preceding one.
func bucketStart(t time.Time, g Granularity) time.Time {
	d := truncateDay(t)
	switch g {
	case GranularityDay:
		return d
	case GranularityWeek:
		// Monday of the week containing the date.
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset)
	case GranularityBiweek:
		if d.Day() <= 15 {
			return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
		}
		return time.Date(d.Year(), d.Month(), 16, 0, 0, 0, 0, d.Location())
	default:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, d.Location())
	}
}

// nextBucketStart steps one bucket forward.
func nextBucketStart(t time.Time, g Granularity) time.Time {
	switch g {
	case GranularityDay:
		return t.AddDate(0, 0, 1)
	case GranularityWeek:
		return t.AddDate(0, 0, 7)
	case GranularityBiweek:
		if t.Day() == 1 {
			return time.Date(t.Year(), t.Month(), 16, 0, 0, 0, 0, t.Location())
		}
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// bucketKey formats a bucket start into its canonical key.
func bucketKey(start time.Time, g Granularity) string {
	if g == GranularityMonth {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

// bucketLabel formats the human label rendered on the chart axis.
func bucketLabel(start time.Time, g Granularity) string {
	switch g {
	case GranularityDay:
		return start.Format("02/01")
	case GranularityWeek:
		end := start.AddDate(0, 0, 6)
		return fmt.Sprintf("%02d-%02d %s", start.Day(), end.Day(), end.Format("Jan"))
	case GranularityBiweek:
		end := biweekEnd(start)
		return fmt.Sprintf("%02d-%02d %s", start.Day(), end.Day(), end.Format("Jan"))
	default:
		return start.Format("Jan 06")
	}
}

// biweekEnd returns the last day of the half-month starting at start.
func biweekEnd(start time.Time) time.Time {
	if start.Day() == 1 {
		return time.Date(start.Year(), start.Month(), 15, 0, 0, 0, 0, start.Location())
	}
	// Last day of the month.
	return time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location()).
		AddDate(0, 1, -1)
}

// estimateBucketCount sizes the series slice up front.
func estimateBucketCount(r DateRange) int {
	days := r.Days() + 1
	switch r.Granularity {
	case GranularityDay:
		return days
	case GranularityWeek:
		return days/7 + 2
	case GranularityBiweek:
		return days/15 + 2
	default:
		return days/28 + 2
	}
}
