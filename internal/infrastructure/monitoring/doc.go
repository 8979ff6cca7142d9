/*
Package monitoring provides Prometheus metrics for the pipe filter server.

# Overview

Each Metrics value owns a private prometheus.Registry, so several servers
(or tests) can run in one process without duplicate registration.

# Metrics

- pipefilter_requests_total{outcome}: handler outcomes (ok, pipe_open, read, malformed, write, cancelled)
- pipefilter_request_duration_seconds{filter}: lock-to-response latency
- pipefilter_request_bytes: payload sizes
- pipefilter_filter_requests_total{filter}: served requests per filter
- pipefilter_handlers_active / pipefilter_handlers_spawned_total
- pipefilter_spawns_skipped_total: ticks skipped while the registry was full
- pipefilter_breaker_trips_total
- pipefilter_uptime_seconds

# Usage

	metrics := monitoring.NewMetrics()

	timer := monitoring.NewTimer(metrics)
	// ... serve one request ...
	timer.Stop(monitoring.OutcomeOK, "upper", len(payload))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))
*/
package monitoring
