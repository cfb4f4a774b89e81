/*
	Copyright 2025 Google Inc.
	Licensed under the Apache License, Version 2.0 (the "License");
	you may not use this file except in compliance with the License.
	You may obtain a copy of the License at
		https://www.apache.org/licenses/LICENSE-2.0
	Unless required by applicable law or agreed to in writing, software
	distributed under the License is distributed on an "AS IS" BASIS,
	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
	See the License for the specific language governing permissions and
	limitations under the License.
*/

// Package metrics defines the Prometheus metrics exported by covidviz.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "covidviz"

// Fetch outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics is the set of covidviz metrics.  A nil *Metrics discards all
// observations.
type Metrics struct {
	Fetches        *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	DroppedRecords *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	Events         *prometheus.CounterVec
	Sessions       prometheus.Gauge
}

// New creates new, unregistered metrics.
func New() *Metrics {
	return &Metrics{
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "fetches_total",
			Help:      "Total number of dataset fetches.",
		}, []string{"dataset", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "fetch_duration_seconds",
			Help:      "Dataset fetch latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"dataset"}),
		DroppedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetcher",
			Name:      "dropped_records_total",
			Help:      "Total number of fetched records dropped as malformed.",
		}, []string{"dataset"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "datasource",
			Name:      "query_duration_seconds",
			Help:      "Scene query latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "app",
			Name:      "events_total",
			Help:      "Total number of interaction events applied.",
		}, []string{"type"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "sessions",
			Help:      "The current number of cached sessions.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.Fetches.Describe(ch)
	m.FetchDuration.Describe(ch)
	m.DroppedRecords.Describe(ch)
	m.QueryDuration.Describe(ch)
	m.Events.Describe(ch)
	m.Sessions.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.Fetches.Collect(ch)
	m.FetchDuration.Collect(ch)
	m.DroppedRecords.Collect(ch)
	m.QueryDuration.Collect(ch)
	m.Events.Collect(ch)
	m.Sessions.Collect(ch)
}

// ObserveFetch records a fetch of dataset taking seconds, which dropped the
// given number of records.
func (m *Metrics) ObserveFetch(dataset string, seconds float64, dropped int, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.Fetches.WithLabelValues(dataset, outcome).Inc()
	m.FetchDuration.WithLabelValues(dataset).Observe(seconds)
	if dropped > 0 {
		m.DroppedRecords.WithLabelValues(dataset).Add(float64(dropped))
	}
}

// ObserveQuery records a scene query taking seconds.
func (m *Metrics) ObserveQuery(query string, seconds float64) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(query).Observe(seconds)
}

// CountEvent records an applied interaction event.
func (m *Metrics) CountEvent(eventType string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(eventType).Inc()
}

// SetSessions records the number of cached sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.Sessions.Set(float64(n))
}

// check interfaces
var (
	_ prometheus.Collector = (*Metrics)(nil)
)
