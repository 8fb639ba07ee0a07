package analytics

import (
	"time"

	apperrors "github.com/clinstack/dashboard-analytics/pkg/errors"
)

// Granularity is the width of a chart bucket, chosen adaptively from the
// window length so a dashboard renders roughly 7-40 buckets regardless of
// the range selected.
type Granularity string

const (
	GranularityDay    Granularity = "day"
	GranularityWeek   Granularity = "week"
	GranularityBiweek Granularity = "biweek"
	GranularityMonth  Granularity = "month"
)

// IsValid checks if the granularity value is one of the defined constants.
func (g Granularity) IsValid() bool {
	switch g {
	case GranularityDay, GranularityWeek, GranularityBiweek, GranularityMonth:
		return true
	}
	return false
}

// RangeOption is a symbolic date-range selector offered by the dashboard.
type RangeOption string

const (
	RangeLast7Days  RangeOption = "7d"
	RangeLast30Days RangeOption = "30d"
	RangeLast90Days RangeOption = "90d"
	RangeYearToDate RangeOption = "ytd"
	RangeAll        RangeOption = "all"
	RangeCustom     RangeOption = "custom"
)

// IsValid checks if the option value is one of the defined constants.
func (o RangeOption) IsValid() bool {
	switch o {
	case RangeLast7Days, RangeLast30Days, RangeLast90Days, RangeYearToDate, RangeAll, RangeCustom:
		return true
	}
	return false
}

// RangeRequest carries the caller's range selection. CustomStart is required
// for RangeCustom; CustomEnd overrides the default "today" end for any option.
type RangeRequest struct {
	Option      RangeOption
	CustomStart *time.Time
	CustomEnd   *time.Time
}

// DateRange is a concrete, day-aligned window with its resolved bucket
// granularity. Start never follows End: a reversed request is swapped and
// flagged through WasCorrected instead of failing.
type DateRange struct {
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	Granularity  Granularity `json:"granularity"`
	WasCorrected bool        `json:"was_corrected"`
}

// Days returns the window length in whole days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// Contains reports whether t falls inside the window, comparing at day
// granularity. The comparison happens on the window's own calendar: a record
// timestamp in another zone is converted before truncation, so edge-day
// records never fall out of the window on non-UTC hosts.
func (r DateRange) Contains(t time.Time) bool {
	d := localDay(t, r.Start.Location())
	return !d.Before(r.Start) && !d.After(r.End)
}

// ResolveRange turns a symbolic range selection into a concrete window.
// The end defaults to the start of "today" so results stay stable within a
// day; earliestRecord anchors the "all" option and may be zero when no
// records carry a usable date.
func ResolveRange(req RangeRequest, earliestRecord time.Time, now time.Time) (DateRange, error) {
	end := truncateDay(now)
	if req.CustomEnd != nil {
		end = truncateDay(*req.CustomEnd)
	}

	var start time.Time
	switch req.Option {
	case RangeLast7Days:
		start = end.AddDate(0, 0, -7)
	case RangeLast30Days:
		start = end.AddDate(0, 0, -30)
	case RangeLast90Days:
		start = end.AddDate(0, 0, -90)
	case RangeYearToDate:
		start = time.Date(end.Year(), time.January, 1, 0, 0, 0, 0, end.Location())
	case RangeAll:
		if earliestRecord.IsZero() {
			start = end
		} else {
			start = truncateDay(earliestRecord)
		}
	case RangeCustom:
		if req.CustomStart == nil {
			return DateRange{}, apperrors.NewValidationError("custom range requires a start date")
		}
		start = truncateDay(*req.CustomStart)
	default:
		return DateRange{}, apperrors.NewValidationError("unknown range option: " + string(req.Option))
	}

	corrected := false
	if start.After(end) {
		start, end = end, start
		corrected = true
	}

	windowDays := int(end.Sub(start).Hours() / 24)
	return DateRange{
		Start:        start,
		End:          end,
		Granularity:  granularityFor(windowDays),
		WasCorrected: corrected,
	}, nil
}

// granularityFor picks the bucket width from the window length in days.
func granularityFor(windowDays int) Granularity {
	switch {
	case windowDays <= 8:
		return GranularityDay
	case windowDays <= 34:
		return GranularityWeek
	case windowDays <= 100:
		return GranularityBiweek
	default:
		return GranularityMonth
	}
}

// truncateDay drops the time-of-day component, keeping the location.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// localDay truncates t to the start of its calendar day as seen from loc.
// Day-granularity comparisons must share one calendar; truncating each
// operand in its own location compares different days whenever zones differ.
func localDay(t time.Time, loc *time.Location) time.Time {
	return truncateDay(t.In(loc))
}
