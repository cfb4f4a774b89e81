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

package metrics

import (
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m))

	m.ObserveFetch("default", 0.5, 3, nil)
	m.ObserveFetch("default", 0.1, 0, errors.New("boom"))
	m.ObserveQuery("covid.timeseries", 0.01)
	m.CountEvent("pointer_down")
	m.CountEvent("pointer_down")
	m.SetSessions(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("default", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fetches.WithLabelValues("default", OutcomeError)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Events.WithLabelValues("pointer_down")))

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP covidviz_fetcher_dropped_records_total Total number of fetched records dropped as malformed.
# TYPE covidviz_fetcher_dropped_records_total counter
covidviz_fetcher_dropped_records_total{dataset="default"} 3
# HELP covidviz_service_sessions The current number of cached sessions.
# TYPE covidviz_service_sessions gauge
covidviz_service_sessions 2
`), "covidviz_fetcher_dropped_records_total", "covidviz_service_sessions")
	assert.NoError(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFetch("default", 1, 1, nil)
		m.ObserveQuery("q", 1)
		m.CountEvent("e")
		m.SetSessions(1)
	})
}
