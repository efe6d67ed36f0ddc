// Package metrics объявляет счётчики Prometheus для пайплайна ингестии.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FetchRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_fetch_runs_total",
		Help: "Completed fetch runs per source and status.",
	}, []string{"source", "status"})

	ArticlesUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_articles_upserted_total",
		Help: "Articles created or updated per source.",
	}, []string{"source"})

	ItemFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_item_failures_total",
		Help: "Single items skipped due to mapping or storage errors.",
	}, []string{"source"})

	RateLimitEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_rate_limit_events_total",
		Help: "HTTP 429 responses per source.",
	}, []string{"source"})

	CategoriesSynced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "news_categories_synced_total",
		Help: "Categories found or created during sync per source.",
	}, []string{"source"})
)
