/*
Package monitoring provides metrics collection for the connector.

# Overview

Metrics are Prometheus collectors registered on a registry owned by the
Metrics value, covering HTTP traffic and connector operations.

# Features

- HTTP request metrics (latency, throughput, size)
- Connector operation metrics per mode (count, duration, error kind)
- Upload sizes and download counts
- Uptime and Go runtime collectors

# Usage

	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time operations
	timer := monitoring.NewTimer(metrics, "rename")
	// ... perform operation ...
	timer.Stop(monitoring.StatusSuccess)

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
