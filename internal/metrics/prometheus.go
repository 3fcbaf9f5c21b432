package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalyzeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "topic_pulse_analyze_duration_seconds",
			Help:    "Duration of one topic analysis run",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	TweetsFetched = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_tweets_fetched_total",
			Help: "Total posts returned by the search collaborator",
		},
	)

	TweetsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_tweets_saved_total",
			Help: "Total new tweets persisted",
		},
	)

	DuplicatesDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_tweets_duplicates_total",
			Help: "Total fetched tweets dropped as already stored",
		},
	)

	SearchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_search_failures_total",
			Help: "Total search collaborator failures degraded to empty results",
		},
	)

	ClassifierFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_classifier_failures_total",
			Help: "Total sentiment classifications degraded to the neutral default",
		},
	)

	DashboardCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_dashboard_cache_hits_total",
			Help: "Total dashboard reads served from cache",
		},
	)

	DashboardCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "topic_pulse_dashboard_cache_misses_total",
			Help: "Total dashboard reads built from the store",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalyzeDuration)
	prometheus.MustRegister(TweetsFetched)
	prometheus.MustRegister(TweetsSaved)
	prometheus.MustRegister(DuplicatesDropped)
	prometheus.MustRegister(SearchFailures)
	prometheus.MustRegister(ClassifierFailures)
	prometheus.MustRegister(DashboardCacheHits)
	prometheus.MustRegister(DashboardCacheMisses)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
