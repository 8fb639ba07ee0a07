package analytics

import (
	"context"
	"strconv"
	"time"

	"github.com/clinstack/dashboard-analytics/internal/adapters/cache"
	"github.com/clinstack/dashboard-analytics/internal/domain/entities"
	"github.com/clinstack/dashboard-analytics/internal/domain/providers"
	"github.com/clinstack/dashboard-analytics/internal/infrastructure/observability"
)

// Classification labels a date relative to the current day.
type Classification string

const (
	ClassificationToday  Classification = "today"
	ClassificationFuture Classification = "future"
	ClassificationPast   Classification = "past"
)

// ClassifiedAppointment is an adapted appointment plus its classification.
type ClassifiedAppointment struct {
	entities.Appointment
	Classification Classification `json:"classification"`
}

// DateClassifier classifies dates as today/future/past with a bounded cache
// in front. Cache keys embed the reference day, so an entry computed before
// midnight can never be served after it: the day rolls over, the keys stop
// matching, and stale entries age out of the LRU on their own.
type DateClassifier struct {
	cache   providers.CacheProvider[string, Classification]
	metrics *observability.EngineMetrics
}

// NewDateClassifier creates a classifier with a bounded cache of the given
// capacity. A non-positive capacity disables caching.
func NewDateClassifier(capacity int, metrics *observability.EngineMetrics) *DateClassifier {
	return &DateClassifier{
		cache:   cache.NewLRUAdapter[string, Classification](capacity),
		metrics: metrics,
	}
}

// Classify labels t relative to today, comparing at day granularity.
func (c *DateClassifier) Classify(ctx context.Context, t time.Time, today time.Time) Classification {
	key := classificationKey(t, today)
	if v, ok := c.cache.Get(key); ok {
		c.metrics.RecordCacheHit(ctx, "classifier")
		return v
	}

	v := classifyDate(t, today)
	c.cache.Set(key, v)
	c.metrics.RecordCacheMiss(ctx, "classifier")
	return v
}

// Reset drops all cached classifications. Hosts that run across midnight may
// call this on a timer as well, though the epoch-day keys already make stale
// reads impossible.
func (c *DateClassifier) Reset() {
	c.cache.Clear()
}

// classifyDate is the pure comparison behind the cache. The date under test
// is read on the reference clock's calendar, so a UTC timestamp classified
// from a non-UTC host lands on the right side of midnight.
func classifyDate(t time.Time, today time.Time) Classification {
	d := localDay(t, today.Location())
	ref := truncateDay(today)
	switch {
	case d.Equal(ref):
		return ClassificationToday
	case d.After(ref):
		return ClassificationFuture
	default:
		return ClassificationPast
	}
}

// classificationKey builds the cache key from the date under test and the
// reference day's epoch-day number.
func classificationKey(t time.Time, today time.Time) string {
	epochDay := truncateDay(today).Unix() / 86400
	return strconv.FormatInt(epochDay, 10) + "|" + t.In(today.Location()).Format("2006-01-02")
}
