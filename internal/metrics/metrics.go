package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PageCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eum_post_page_cache_total",
		Help: "Post listing lookups by outcome (hit, miss, shared, purge).",
	}, []string{"outcome"})

	Search = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eum_post_search_total",
		Help: "Post searches by outcome (backend, offline, failed, fallback_list).",
	}, []string{"outcome"})

	BackendErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eum_backend_errors_total",
		Help: "Failed backend calls by operation.",
	}, []string{"op"})

	Sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "eum_sessions",
		Help: "Sessions currently held in memory.",
	})

	WebLogs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "eum_weblogs_total",
		Help: "Analytics events by outcome (queued, sent, dropped).",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(PageCache, Search, BackendErrors, Sessions, WebLogs)
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
