/*
 * Copyright 2022 Holoinsight Project Authors. Licensed under Apache-2.0.
 */

package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"strconv"
	"time"
)

type (
	metrics struct {
		registry        *prometheus.Registry
		requests        *prometheus.CounterVec
		latency         *prometheus.HistogramVec
		parses          *prometheus.CounterVec
		timeFormatCheck *prometheus.CounterVec
	}
)

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clo",
			Name:      "api_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clo",
			Name:      "api_request_duration_seconds",
			Help:      "API request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		parses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clo",
			Name:      "sample_parse_total",
			Help:      "Sample log evaluations by log type and result.",
		}, []string{"log_type", "result"}),
		timeFormatCheck: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clo",
			Name:      "time_format_checks_total",
			Help:      "Time format checks by resulting status.",
		}, []string{"status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.latency,
		m.parses,
		m.timeFormatCheck,
	)
	return m
}

func (m *metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route).Observe(time.Since(begin).Seconds())
	}
}
