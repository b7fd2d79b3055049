// Package stats provides the metrics interface used by the query cache,
// the Steam client and the aggregator.
package stats

// Metric names.
const (
	MetricFetches        = "gamepicker_query_fetches_total"
	MetricFetchErrors    = "gamepicker_query_fetch_errors_total"
	MetricFetchShared    = "gamepicker_query_fetch_shared_total"
	MetricFetchDiscarded = "gamepicker_query_fetch_discarded_total"
	MetricFetchSeconds   = "gamepicker_query_fetch_seconds"
	MetricInvalidations  = "gamepicker_query_invalidations_total"
	MetricSubscribers    = "gamepicker_query_subscribers"

	MetricMutations      = "gamepicker_mutations_total"
	MetricMutationErrors = "gamepicker_mutation_errors_total"

	MetricPlaceholders  = "gamepicker_catalog_placeholders_total"
	MetricDetailsHits   = "gamepicker_steam_details_cache_hits_total"
	MetricDetailsMisses = "gamepicker_steam_details_cache_misses_total"
)

// Collector receives metric updates.
type Collector interface {
	IncCounter(name string, delta int64)
	SetGauge(name string, value int64)
	ObserveHistogram(name string, value float64)
}

// Noop discards everything.
type Noop struct{}

var _ Collector = Noop{}

func (Noop) IncCounter(string, int64)         {}
func (Noop) SetGauge(string, int64)           {}
func (Noop) ObserveHistogram(string, float64) {}

// OrNoop returns c, or Noop when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return Noop{}
	}
	return c
}
